package protocol

// FieldName names a parameter or answer field. The string value is the
// canonical identifier used in schemas, generated headers and remote payloads.
type FieldName string

const (
	FieldUndefined FieldName = "undefined"

	FieldFrequency       FieldName = "freq"
	FieldSwf             FieldName = "swf"
	FieldGain            FieldName = "gain"
	FieldTemperature     FieldName = "temp"
	FieldTemperatureMCU  FieldName = "tmcu"
	FieldSignal          FieldName = "signal"
	FieldWaveform        FieldName = "waveform"
	FieldURMS            FieldName = "urms"
	FieldIRMS            FieldName = "irms"
	FieldPhase           FieldName = "phase"
	FieldTsFlag          FieldName = "ts_flag"
	FieldProcedure       FieldName = "procedure"
	FieldErrorCode       FieldName = "error_code"
	FieldATF             FieldName = "atf"
	FieldATK             FieldName = "atk"
	FieldATT             FieldName = "att"
	FieldTransducerID    FieldName = "transducer_id"
	FieldIndex           FieldName = "index"
	FieldTimestamp       FieldName = "timestamp"
	FieldMessage         FieldName = "message"
	FieldSuccess         FieldName = "success"
	FieldUnknownAnswer   FieldName = "unknown_answer"
	FieldTermination     FieldName = "termination"
	FieldCommProtocol    FieldName = "comm_protocol"
	FieldInputSource     FieldName = "input_source"
	FieldPhysComChannel  FieldName = "phys_com_channel"
	FieldLogLevel        FieldName = "log_level"
	FieldLoggerName      FieldName = "logger_name"
	FieldADC             FieldName = "adc"
	FieldDutyCycle       FieldName = "duty_cycle"

	FieldDeviceType        FieldName = "device_type"
	FieldProtocolVersion   FieldName = "protocol_version"
	FieldIsRelease         FieldName = "is_release"
	FieldAdditionalOptions FieldName = "additional_options"
	FieldBuildDate         FieldName = "build_date"
	FieldBuildHash         FieldName = "build_hash"
	FieldBuildType         FieldName = "build_type"
	FieldHardwareVersion   FieldName = "hardware_version"
	FieldFirmwareVersion   FieldName = "firmware_version"
	FieldFirmwareInfo      FieldName = "firmware_info"

	FieldRampFStart FieldName = "ramp_f_start"
	FieldRampFStop  FieldName = "ramp_f_stop"
	FieldRampFStep  FieldName = "ramp_f_step"
	FieldRampTOn    FieldName = "ramp_t_on"
	FieldRampTOff   FieldName = "ramp_t_off"

	FieldScanFRange FieldName = "scan_f_range"
	FieldScanFStep  FieldName = "scan_f_step"
	FieldScanTStep  FieldName = "scan_t_step"
	FieldScanGain   FieldName = "scan_gain"

	FieldTuneFStep  FieldName = "tune_f_step"
	FieldTuneTTime  FieldName = "tune_t_time"
	FieldTuneTStep  FieldName = "tune_t_step"
	FieldTuneGain   FieldName = "tune_gain"

	FieldWipeFRange FieldName = "wipe_f_range"
	FieldWipeFStep  FieldName = "wipe_f_step"
	FieldWipeTOn    FieldName = "wipe_t_on"
	FieldWipeTOff   FieldName = "wipe_t_off"
	FieldWipeTPause FieldName = "wipe_t_pause"

	FieldDutyCycleTOn  FieldName = "duty_cycle_t_on"
	FieldDutyCycleTOff FieldName = "duty_cycle_t_off"
)

func (f FieldName) String() string { return string(f) }
