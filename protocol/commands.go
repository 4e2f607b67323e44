package protocol

// Typed constructors for the commands the rest of the system sends. They only
// build the request record; availability is checked at serialization time
// against the resolved protocol.

func GetProtocol() Command { return Command{Code: CodeGetProtocol} }
func GetInfo() Command     { return Command{Code: CodeGetInfo} }
func GetHelp() Command     { return Command{Code: CodeGetHelp} }
func GetUpdate() Command   { return Command{Code: CodeGetUpdate} }

func GetFrequency() Command { return Command{Code: CodeGetFreq} }
func GetGain() Command      { return Command{Code: CodeGetGain} }
func GetTemperature() Command { return Command{Code: CodeGetTemp} }
func GetUipt() Command      { return Command{Code: CodeGetUipt} }

func SetFrequency(hz int64) Command { return Command{Code: CodeSetFreq, Setter: hz} }
func SetGain(percent int64) Command { return Command{Code: CodeSetGain, Setter: percent} }
func SetSwf(swf int64) Command      { return Command{Code: CodeSetSwf, Setter: swf} }
func SetOn() Command                { return Command{Code: CodeSetOn} }
func SetOff() Command               { return Command{Code: CodeSetOff} }

func GetTransducer() Command          { return Command{Code: CodeGetTransducerID} }
func SetTransducer(idx int64) Command { return Command{Code: CodeSetTransducerID, Setter: idx} }

func GetAtf(idx int64) Command         { return Command{Code: CodeGetAtf, Index: idx} }
func SetAtf(idx, hz int64) Command     { return Command{Code: CodeSetAtf, Index: idx, Setter: hz} }
func GetAtk(idx int64) Command         { return Command{Code: CodeGetAtk, Index: idx} }
func SetAtk(idx, value int64) Command  { return Command{Code: CodeSetAtk, Index: idx, Setter: value} }
func GetAtt(idx int64) Command         { return Command{Code: CodeGetAtt, Index: idx} }
func SetAtt(idx, value int64) Command  { return Command{Code: CodeSetAtt, Index: idx, Setter: value} }

func GetDatetime() Command             { return Command{Code: CodeGetDatetime} }
func SetDatetime(ts Timestamp) Command { return Command{Code: CodeSetDatetime, Setter: ts} }

func SetRampFStart(hz int64) Command { return Command{Code: CodeSetRampFStart, Setter: hz} }
func SetRampFStop(hz int64) Command  { return Command{Code: CodeSetRampFStop, Setter: hz} }
func SetRampFStep(hz int64) Command  { return Command{Code: CodeSetRampFStep, Setter: hz} }
func SetRampTOn(ms int64) Command    { return Command{Code: CodeSetRampTOn, Setter: ms} }
func SetRampTOff(ms int64) Command   { return Command{Code: CodeSetRampTOff, Setter: ms} }
func SetRamp() Command               { return Command{Code: CodeSetRamp} }

func SetScanFRange(hz int64) Command { return Command{Code: CodeSetScanFRange, Setter: hz} }
func SetScanFStep(hz int64) Command  { return Command{Code: CodeSetScanFStep, Setter: hz} }
func SetScanTStep(ms int64) Command  { return Command{Code: CodeSetScanTStep, Setter: ms} }
func SetScanGain(g int64) Command    { return Command{Code: CodeSetScanGain, Setter: g} }
func SetScan() Command               { return Command{Code: CodeSetScan} }

func SetTuneFStep(hz int64) Command { return Command{Code: CodeSetTuneFStep, Setter: hz} }
func SetTuneTTime(ms int64) Command { return Command{Code: CodeSetTuneTTime, Setter: ms} }
func SetTuneTStep(ms int64) Command { return Command{Code: CodeSetTuneTStep, Setter: ms} }
func SetTuneGain(g int64) Command   { return Command{Code: CodeSetTuneGain, Setter: g} }
func SetTune() Command              { return Command{Code: CodeSetTune} }

func SetWipeFRange(hz int64) Command { return Command{Code: CodeSetWipeFRange, Setter: hz} }
func SetWipeFStep(hz int64) Command  { return Command{Code: CodeSetWipeFStep, Setter: hz} }
func SetWipeTOn(ms int64) Command    { return Command{Code: CodeSetWipeTOn, Setter: ms} }
func SetWipeTOff(ms int64) Command   { return Command{Code: CodeSetWipeTOff, Setter: ms} }
func SetWipeTPause(ms int64) Command { return Command{Code: CodeSetWipeTPause, Setter: ms} }
func SetWipe() Command               { return Command{Code: CodeSetWipe} }

func SetDutyCycleTOn(ms int64) Command  { return Command{Code: CodeSetDutyCycleTOn, Setter: ms} }
func SetDutyCycleTOff(ms int64) Command { return Command{Code: CodeSetDutyCycleTOff, Setter: ms} }
func SetDutyCycle() Command             { return Command{Code: CodeSetDutyCycle} }

func SetStop() Command     { return Command{Code: CodeSetStop} }
func SetContinue() Command { return Command{Code: CodeSetContinue} }
func SetPause() Command    { return Command{Code: CodeSetPause} }

func ClearErrors() Command   { return Command{Code: CodeClearErrors} }
func RestartDevice() Command { return Command{Code: CodeRestartDevice} }
func GetAdc() Command        { return Command{Code: CodeGetAdc} }
