// Code generated from textfsm file
package textfsm

import (
	"github.com/sirikothe/gotextfsm"
)

var templateShowInterface string = `Value Required INTERFACE (\S+)
Value LINK_STATE (up|down)
Value ADMIN_STATE (up|down)

Start
  ^Interface\s+${INTERFACE}\s+is\s+${LINK_STATE}
  ^\s*Admin\s+state\s+is\s+${ADMIN_STATE} -> Record`

type ShowInterfaceRow struct {
	AdminState string
	Interface  string
	LinkState  string
}

type ShowInterface struct {
	Rows []ShowInterfaceRow
}

func (p *ShowInterface) IsGoTextFSMStruct() {}

func (p *ShowInterface) Parse(cliOutput string) error {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templateShowInterface); err != nil {
		return err
	}

	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(cliOutput, fsm, true); err != nil {
		return err
	}

	for _, row := range parser.Dict {
		p.Rows = append(p.Rows,
			ShowInterfaceRow{
				AdminState: row["ADMIN_STATE"].(string),
				Interface:  row["INTERFACE"].(string),
				LinkState:  row["LINK_STATE"].(string),
			},
		)
	}
	return nil
}
