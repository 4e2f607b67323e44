package transpile

import (
	"fmt"

	p "github.com/soniccontrol/sonicctl/protocol"
)

var commandNames = map[p.CommandCode]string{
	p.CodeGetProtocol:     "CMD_GET_PROTOCOL",
	p.CodeGetInfo:         "CMD_GET_INFO",
	p.CodeGetHelp:         "CMD_GET_HELP",
	p.CodeGetUpdate:       "CMD_GET_UPDATE",
	p.CodeGetSwf:          "CMD_GET_SWF",
	p.CodeGetFreq:         "CMD_GET_FREQ",
	p.CodeGetGain:         "CMD_GET_GAIN",
	p.CodeGetSignal:       "CMD_GET_SIGNAL",
	p.CodeGetTemp:         "CMD_GET_TEMP",
	p.CodeGetTmcu:         "CMD_GET_TMCU",
	p.CodeGetUipt:         "CMD_GET_UIPT",
	p.CodeGetIrms:         "CMD_GET_IRMS",
	p.CodeGetTransducerID: "CMD_GET_TRANSDUCER_ID",
	p.CodeGetAtfList:      "CMD_GET_ATF_LIST",
	p.CodeGetAtf:          "CMD_GET_ATF",
	p.CodeGetAtkList:      "CMD_GET_ATK_LIST",
	p.CodeGetAtk:          "CMD_GET_ATK",
	p.CodeGetAttList:      "CMD_GET_ATT_LIST",
	p.CodeGetAtt:          "CMD_GET_ATT",
	p.CodeGetDatetime:     "CMD_GET_DATETIME",
	p.CodeGetWaveform:     "CMD_GET_WAVEFORM",
	p.CodeGetLogLevel:     "CMD_GET_LOG_LEVEL",
	p.CodeGetDutyCycle:    "CMD_GET_DUTY_CYCLE",
	p.CodeGetRamp:         "CMD_GET_RAMP",
	p.CodeGetScan:         "CMD_GET_SCAN",
	p.CodeGetTune:         "CMD_GET_TUNE",
	p.CodeGetWipe:         "CMD_GET_WIPE",
	p.CodeGetAdc:          "CMD_GET_ADC",

	p.CodeSetSwf:          "CMD_SET_SWF",
	p.CodeSetFreq:         "CMD_SET_FREQ",
	p.CodeSetGain:         "CMD_SET_GAIN",
	p.CodeSetOff:          "CMD_SET_OFF",
	p.CodeSetOn:           "CMD_SET_ON",
	p.CodeSetTransducerID: "CMD_SET_TRANSDUCER_ID",
	p.CodeSetAtf:          "CMD_SET_ATF",
	p.CodeSetAtk:          "CMD_SET_ATK",
	p.CodeSetAtt:          "CMD_SET_ATT",
	p.CodeSetDatetime:     "CMD_SET_DATETIME",
	p.CodeSetWaveform:     "CMD_SET_WAVEFORM",
	p.CodeSetLogLevel:     "CMD_SET_LOG_LEVEL",

	p.CodeSetDutyCycle:     "CMD_SET_DUTY_CYCLE",
	p.CodeSetDutyCycleTOff: "CMD_SET_DUTY_CYCLE_T_OFF",
	p.CodeSetDutyCycleTOn:  "CMD_SET_DUTY_CYCLE_T_ON",

	p.CodeSetRamp:       "CMD_SET_RAMP",
	p.CodeSetRampFStart: "CMD_SET_RAMP_F_START",
	p.CodeSetRampFStop:  "CMD_SET_RAMP_F_STOP",
	p.CodeSetRampFStep:  "CMD_SET_RAMP_F_STEP",
	p.CodeSetRampTOn:    "CMD_SET_RAMP_T_ON",
	p.CodeSetRampTOff:   "CMD_SET_RAMP_T_OFF",

	p.CodeSetScan:       "CMD_SET_SCAN",
	p.CodeSetScanFRange: "CMD_SET_SCAN_F_RANGE",
	p.CodeSetScanFStep:  "CMD_SET_SCAN_F_STEP",
	p.CodeSetScanTStep:  "CMD_SET_SCAN_T_STEP",
	p.CodeSetScanGain:   "CMD_SET_SCAN_GAIN",

	p.CodeSetTune:      "CMD_SET_TUNE",
	p.CodeSetTuneFStep: "CMD_SET_TUNE_F_STEP",
	p.CodeSetTuneTTime: "CMD_SET_TUNE_T_TIME",
	p.CodeSetTuneTStep: "CMD_SET_TUNE_T_STEP",
	p.CodeSetTuneGain:  "CMD_SET_TUNE_GAIN",

	p.CodeSetWipe:       "CMD_SET_WIPE",
	p.CodeSetWipeFRange: "CMD_SET_WIPE_F_RANGE",
	p.CodeSetWipeFStep:  "CMD_SET_WIPE_F_STEP",
	p.CodeSetWipeTOn:    "CMD_SET_WIPE_T_ON",
	p.CodeSetWipeTOff:   "CMD_SET_WIPE_T_OFF",
	p.CodeSetWipeTPause: "CMD_SET_WIPE_T_PAUSE",
	p.CodeSetWipeGain:   "CMD_SET_WIPE_GAIN",

	p.CodeSetAuto: "CMD_SET_AUTO",

	p.CodeSetControlMode:    "CMD_SET_CONTROL_MODE",
	p.CodeSetCommProtocol:   "CMD_SET_COMM_PROTOCOL",
	p.CodeSetPhysComChannel: "CMD_SET_PHYS_COM_CHANNEL",
	p.CodeSetTermination:    "CMD_SET_TERMINATION",
	p.CodeClearErrors:       "CMD_CLEAR_ERRORS",

	p.CodeSetStop:     "CMD_SET_STOP",
	p.CodeSetContinue: "CMD_SET_CONTINUE",
	p.CodeSetPause:    "CMD_SET_PAUSE",

	p.CodeSetFlashUSB:    "CMD_SET_FLASH_USB",
	p.CodeSetFlash9600:   "CMD_SET_FLASH_9600",
	p.CodeSetFlash115200: "CMD_SET_FLASH_115200",

	p.CodeStartConfigurator: "CMD_START_CONFIGURATOR",
	p.CodeSetDefault:        "CMD_SET_DEFAULT",

	p.CodeNotifyMessage:          "CMD_NOTIFY_MESSAGE",
	p.CodeNotifyProcedureFailure: "CMD_NOTIFY_PROCEDURE_FAILURE",

	p.CodeGetDatetimePico: "CMD_GET_DATETIME_PICO",
	p.CodeRestartDevice:   "CMD_RESTART_DEVICE",
	p.CodeInternalCommand: "CMD_INTERNAL_COMMAND",
	p.CodeSonicForce:      "CMD_SONIC_FORCE",
}

func commandCodeName(c p.CommandCode) string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CMD_%d", c)
}
