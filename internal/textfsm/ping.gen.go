// Code generated from textfsm file
package textfsm

import (
	"github.com/sirikothe/gotextfsm"
)

var templatePing string = `Value DESTINATION (\S+)
Value TRANSMITTED (\d+)
Value RECEIVED (\d+)
Value LOSS ([\d\.]+)

Start
  ^PING\s+${DESTINATION}\s
  ^${TRANSMITTED}\s+packets\s+transmitted,\s+${RECEIVED}\s+(?:packets\s+)?received.*?${LOSS}%\s+packet\s+loss -> Record`

type PingRow struct {
	Destination string
	Loss        string
	Received    string
	Transmitted string
}

type Ping struct {
	Rows []PingRow
}

func (p *Ping) IsGoTextFSMStruct() {}

func (p *Ping) Parse(cliOutput string) error {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templatePing); err != nil {
		return err
	}

	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(cliOutput, fsm, true); err != nil {
		return err
	}

	for _, row := range parser.Dict {
		p.Rows = append(p.Rows,
			PingRow{
				Destination: row["DESTINATION"].(string),
				Loss:        row["LOSS"].(string),
				Received:    row["RECEIVED"].(string),
				Transmitted: row["TRANSMITTED"].(string),
			},
		)
	}
	return nil
}
