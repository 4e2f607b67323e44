package registry

import (
	p "github.com/soniccontrol/sonicctl/protocol"
)

// v2 adds error management and the descale ADC readout. Crystal stays frozen
// at v1.
var layerV2 = layer{
	version:   p.V(2, 0, 0),
	devices:   []p.DeviceType{p.DeviceMvpWorker, p.DeviceDescale},
	contracts: contractsV2,
}

func contractsV2(dt p.DeviceType) contractSet {
	cs := contractSet{}
	cs.add([]*p.CommandContract{
		contract(p.CodeClearErrors, command("!clear_errors"), successAnswer(), p.TagConfig),
		contract(p.CodeRestartDevice, command("!restart"), successAnswer(), p.TagConfig),
	})
	if dt == p.DeviceDescale {
		cs.add([]*p.CommandContract{
			contract(p.CodeGetAdc, command("?adc"), answer(afield(p.FieldADC, adcType())), p.TagStatus),
		})
	}
	return cs
}
