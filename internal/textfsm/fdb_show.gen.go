// Code generated from textfsm file
package textfsm

import (
	"github.com/sirikothe/gotextfsm"
)

var templateFdbShow string = `Value PORT (\S+)
Value VLAN (\d+)
Value Required MAC ([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})
Value AGE (\d+|\?)

Start
  ^\s*${PORT}\s+${VLAN}\s+${MAC}\s+${AGE} -> Record`

type FdbShowRow struct {
	Age  string
	Mac  string
	Port string
	Vlan string
}

type FdbShow struct {
	Rows []FdbShowRow
}

func (p *FdbShow) IsGoTextFSMStruct() {}

func (p *FdbShow) Parse(cliOutput string) error {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templateFdbShow); err != nil {
		return err
	}

	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(cliOutput, fsm, true); err != nil {
		return err
	}

	for _, row := range parser.Dict {
		p.Rows = append(p.Rows,
			FdbShowRow{
				Age:  row["AGE"].(string),
				Mac:  row["MAC"].(string),
				Port: row["PORT"].(string),
				Vlan: row["VLAN"].(string),
			},
		)
	}
	return nil
}
