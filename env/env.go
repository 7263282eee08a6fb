package env

// Args are the command line switches, bound by the root command.
type Args struct {
	Test       *bool
	Verbose    *bool
	ConfigPath *string
	Profile    *string
	Metrics    *string
	Cycles     *int
	Serial     *string
	MQTT       *string
}
