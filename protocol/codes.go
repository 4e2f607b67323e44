package protocol

import "strconv"

// CommandCode is the stable numeric identity of a command. Codes never change
// meaning across protocol versions; new behaviour gets a new code.
type CommandCode uint16

const (
	CodeGetProtocol CommandCode = 0
	CodeGetInfo     CommandCode = 1
	CodeGetHelp     CommandCode = 2
	CodeGetUpdate   CommandCode = 3

	CodeGetSwf          CommandCode = 10
	CodeGetFreq         CommandCode = 20
	CodeGetGain         CommandCode = 30
	CodeGetSignal       CommandCode = 40
	CodeGetTemp         CommandCode = 50
	CodeGetTmcu         CommandCode = 60
	CodeGetUipt         CommandCode = 70
	CodeGetIrms         CommandCode = 80
	CodeGetTransducerID CommandCode = 90

	CodeGetAtfList CommandCode = 100
	CodeGetAtf     CommandCode = 101
	CodeGetAtkList CommandCode = 110
	CodeGetAtk     CommandCode = 111
	CodeGetAttList CommandCode = 120
	CodeGetAtt     CommandCode = 121

	CodeGetDatetime  CommandCode = 130
	CodeGetWaveform  CommandCode = 140
	CodeGetLogLevel  CommandCode = 150
	CodeGetDutyCycle CommandCode = 300
	CodeGetRamp      CommandCode = 310
	CodeGetScan      CommandCode = 320
	CodeGetTune      CommandCode = 330
	CodeGetWipe      CommandCode = 340
	CodeGetAdc       CommandCode = 360

	CodeSetSwf          CommandCode = 1010
	CodeSetFreq         CommandCode = 1020
	CodeSetGain         CommandCode = 1030
	CodeSetOff          CommandCode = 1040
	CodeSetOn           CommandCode = 1041
	CodeSetTransducerID CommandCode = 1090
	CodeSetAtf          CommandCode = 1101
	CodeSetAtk          CommandCode = 1111
	CodeSetAtt          CommandCode = 1121
	CodeSetDatetime     CommandCode = 1130
	CodeSetWaveform     CommandCode = 1140
	CodeSetLogLevel     CommandCode = 1150

	CodeSetDutyCycle     CommandCode = 1300
	CodeSetDutyCycleTOff CommandCode = 1301
	CodeSetDutyCycleTOn  CommandCode = 1302

	CodeSetRamp       CommandCode = 1310
	CodeSetRampFStart CommandCode = 1311
	CodeSetRampFStop  CommandCode = 1312
	CodeSetRampFStep  CommandCode = 1313
	CodeSetRampTOn    CommandCode = 1314
	CodeSetRampTOff   CommandCode = 1315

	CodeSetScan       CommandCode = 1320
	CodeSetScanFRange CommandCode = 1321
	CodeSetScanFStep  CommandCode = 1322
	CodeSetScanTStep  CommandCode = 1323
	CodeSetScanGain   CommandCode = 1324

	CodeSetTune      CommandCode = 1330
	CodeSetTuneFStep CommandCode = 1331
	CodeSetTuneTTime CommandCode = 1332
	CodeSetTuneTStep CommandCode = 1333
	CodeSetTuneGain  CommandCode = 1336

	CodeSetWipe       CommandCode = 1340
	CodeSetWipeFRange CommandCode = 1341
	CodeSetWipeFStep  CommandCode = 1342
	CodeSetWipeTOn    CommandCode = 1343
	CodeSetWipeTOff   CommandCode = 1344
	CodeSetWipeTPause CommandCode = 1345
	CodeSetWipeGain   CommandCode = 1346

	CodeSetAuto CommandCode = 1350

	CodeSetControlMode    CommandCode = 2000
	CodeSetCommProtocol   CommandCode = 2010
	CodeSetPhysComChannel CommandCode = 2020
	CodeSetTermination    CommandCode = 2030
	CodeClearErrors       CommandCode = 2040

	CodeSetStop     CommandCode = 3000
	CodeSetContinue CommandCode = 3010
	CodeSetPause    CommandCode = 3020

	CodeSetFlashUSB    CommandCode = 7001
	CodeSetFlash9600   CommandCode = 7002
	CodeSetFlash115200 CommandCode = 7003

	CodeStartConfigurator CommandCode = 8000
	CodeSetDefault        CommandCode = 9000

	CodeNotifyMessage          CommandCode = 18000
	CodeNotifyProcedureFailure CommandCode = 18100

	CodeGetDatetimePico CommandCode = 19000
	CodeRestartDevice   CommandCode = 19010
	CodeInternalCommand CommandCode = 19030
	CodeSonicForce      CommandCode = 19040
)

// Device-reported error codes carried in the error_code answer field.
const (
	ErrCodeNone            = 0
	ErrCodeInternalDevice  = 20000
	ErrCodeCommandNotKnown = 20001
	ErrCodeNotImplemented  = 20002
	ErrCodeNotPermitted    = 20003
	ErrCodeCommandInvalid  = 20004
	ErrCodeSyntax          = 20005
	ErrCodeInvalidValue    = 20006
	ErrCodeParsing         = 20007
	ErrCodeTimeout         = 20008
)

var errCodeLabels = map[int64]string{
	ErrCodeNone:            "ok",
	ErrCodeInternalDevice:  "internal device error",
	ErrCodeCommandNotKnown: "command not known",
	ErrCodeNotImplemented:  "command not implemented",
	ErrCodeNotPermitted:    "command not permitted",
	ErrCodeCommandInvalid:  "invalid command",
	ErrCodeSyntax:          "syntax error",
	ErrCodeInvalidValue:    "invalid value",
	ErrCodeParsing:         "parsing error",
	ErrCodeTimeout:         "timeout",
}

// ErrCodeLabel names a device-reported error code for diagnostics.
func ErrCodeLabel(code int64) string {
	if s, ok := errCodeLabels[code]; ok {
		return s
	}
	return "unknown error " + strconv.FormatInt(code, 10)
}

func (c CommandCode) String() string { return strconv.Itoa(int(c)) }
