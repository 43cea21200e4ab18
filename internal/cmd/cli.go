// Package cmd holds the Kong command structs for the usbdesc CLI.
package cmd

// LogOptions are shared logging flags, bound under the log. prefix.
type LogOptions struct {
	Level string `help:"Log level (trace,debug,info,warn,error)" enum:"trace,debug,info,warn,error" default:"info" env:"USBDESC_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"USBDESC_LOG_FILE"`
}

// CLI is the root command structure parsed by Kong.
type CLI struct {
	Config string     `help:"Path to a config file (json/yaml/toml)" env:"USBDESC_CONFIG"`
	Log    LogOptions `embed:"" prefix:"log."`

	Build     Build         `cmd:"" help:"Build a descriptor blob from a layout file"`
	Inspect   Inspect       `cmd:"" help:"Parse a descriptor blob and print its tree"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Manage usbdesc configuration files"`
}
