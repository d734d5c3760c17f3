// Code generated from textfsm file
package textfsm

import (
	"github.com/sirikothe/gotextfsm"
)

var templateShowMacAddressTable string = `Value Filldown AGE_TIME (\d+)
Value Filldown COUNT (\d+)
Value Required MAC_ADDRESS ([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})
Value VLAN_ID (\d+)
Value TYPE (\w+)
Value PORT (\S+)

Start
  ^MAC\s+age-time\s*:\s*${AGE_TIME}\s+seconds
  ^Number\s+of\s+MAC\s+addresses\s*:\s*${COUNT}
  ^\s*${MAC_ADDRESS}\s+${VLAN_ID}\s+${TYPE}\s+${PORT} -> Record`

type ShowMacAddressTableRow struct {
	AgeTime    string
	Count      string
	MacAddress string
	Port       string
	Type       string
	VlanId     string
}

type ShowMacAddressTable struct {
	Rows []ShowMacAddressTableRow
}

func (p *ShowMacAddressTable) IsGoTextFSMStruct() {}

func (p *ShowMacAddressTable) Parse(cliOutput string) error {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templateShowMacAddressTable); err != nil {
		return err
	}

	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(cliOutput, fsm, true); err != nil {
		return err
	}

	for _, row := range parser.Dict {
		p.Rows = append(p.Rows,
			ShowMacAddressTableRow{
				AgeTime:    row["AGE_TIME"].(string),
				Count:      row["COUNT"].(string),
				MacAddress: row["MAC_ADDRESS"].(string),
				Port:       row["PORT"].(string),
				Type:       row["TYPE"].(string),
				VlanId:     row["VLAN_ID"].(string),
			},
		)
	}
	return nil
}
