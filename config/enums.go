package config

import "stylec/stylesheet"

// Specification of compile output mode.
// ENUM(readable, atomic)
type CompileMode int

// Mode converts configuration value to stylesheet compile mode.
func (m CompileMode) Mode() stylesheet.Mode {
	if m == CompileModeAtomic {
		return stylesheet.ModeAtomic
	}
	return stylesheet.ModeReadable
}

// Specification of class map export format.
// ENUM(none, json, yaml, xml, ion)
type ClassMapFmt int

func (f ClassMapFmt) Ext() string {
	switch f {
	case ClassMapFmtJson:
		return ".json"
	case ClassMapFmtYaml:
		return ".yaml"
	case ClassMapFmtXml:
		return ".xml"
	case ClassMapFmtIon:
		return ".ion"
	default:
		return ""
	}
}
