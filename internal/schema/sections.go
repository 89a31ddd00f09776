// internal/schema/sections.go
package schema

// SectionField is one column of a known table schema.
type SectionField struct {
	Name    string
	Aliases []string
}

// SectionSchema describes one table section extractable from uploads.
type SectionSchema struct {
	Name   string
	Fields []SectionField
}

// MinRequiredFields is the number of distinct column matches needed
// before a header row is accepted as this section. One lucky header
// must not classify an unrelated table.
func (s SectionSchema) MinRequiredFields() int {
	if len(s.Fields) <= 2 {
		return 1
	}
	return 2
}

const (
	SectionDigitalSignals = "DIGITAL_SIGNALS"
	SectionAnalogSignals  = "ANALOG_SIGNALS"
	SectionEquipment      = "EQUIPMENT"
	SectionAlarms         = "ALARMS"
)

// DefaultSections returns the table schemas known to the intake engine.
func DefaultSections() []SectionSchema {
	return []SectionSchema{
		{
			Name: SectionDigitalSignals,
			Fields: []SectionField{
				{Name: "Signal_TAG", Aliases: []string{"signal tag", "tag", "tag no", "tag number", "signal", "di tag", "digital signal", "io tag"}},
				{Name: "Description", Aliases: []string{"description", "desc", "signal description", "service", "signal name"}},
				{Name: "Result", Aliases: []string{"result", "status", "pass fail", "test result", "outcome"}},
			},
		},
		{
			Name: SectionAnalogSignals,
			Fields: []SectionField{
				{Name: "Signal_TAG", Aliases: []string{"signal tag", "tag", "tag no", "tag number", "ai tag", "analog signal"}},
				{Name: "Description", Aliases: []string{"description", "desc", "signal description", "service"}},
				{Name: "Range", Aliases: []string{"range", "signal range", "calibrated range", "min max"}},
				{Name: "Units", Aliases: []string{"units", "unit", "eng units", "engineering units", "uom"}},
				{Name: "Result", Aliases: []string{"result", "status", "test result"}},
			},
		},
		{
			Name: SectionEquipment,
			Fields: []SectionField{
				{Name: "Tag_Number", Aliases: []string{"tag number", "tag no", "equipment tag", "item no", "item number"}},
				{Name: "Description", Aliases: []string{"description", "equipment name", "item", "equipment description"}},
				{Name: "Manufacturer", Aliases: []string{"manufacturer", "make", "vendor", "supplier"}},
				{Name: "Model", Aliases: []string{"model", "model number", "model no", "type"}},
				{Name: "Serial_Number", Aliases: []string{"serial number", "serial no", "serial", "sn"}},
			},
		},
		{
			Name: SectionAlarms,
			Fields: []SectionField{
				{Name: "Alarm_TAG", Aliases: []string{"alarm tag", "alarm", "alarm no", "alarm number"}},
				{Name: "Setpoint", Aliases: []string{"setpoint", "set point", "alarm setpoint", "limit", "trip point"}},
				{Name: "Result", Aliases: []string{"result", "status", "test result", "verified"}},
			},
		},
	}
}
