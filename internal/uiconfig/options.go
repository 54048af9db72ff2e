package uiconfig

// Options is the canonical in-memory UI configuration. It is a plain value:
// readers always get a copy.
type Options struct {
	// ShowAdvancedIBCTransfer exposes the IBC transfer screen where the user
	// sets the counterparty channel by hand. It stays off unless the user
	// opts in, because picking a wrong channel loses funds.
	ShowAdvancedIBCTransfer bool
	ShowDarkMode            bool
}

// DefaultOptions returns the options a fresh store starts with.
func DefaultOptions() Options {
	return Options{
		ShowAdvancedIBCTransfer: false,
		ShowDarkMode:            false,
	}
}

// Record is the persisted form of Options. Fields are pointers because a
// record written by an older version may lack fields added since.
type Record struct {
	ShowAdvancedIBCTransfer *bool `json:"showAdvancedIBCTransfer,omitempty" yaml:"showAdvancedIBCTransfer,omitempty"`
	ShowDarkMode            *bool `json:"showDarkMode,omitempty" yaml:"showDarkMode,omitempty"`
}

// Record converts o into a detached record with every field set.
func (o Options) Record() Record {
	advanced := o.ShowAdvancedIBCTransfer
	dark := o.ShowDarkMode
	return Record{
		ShowAdvancedIBCTransfer: &advanced,
		ShowDarkMode:            &dark,
	}
}

// Merge overlays the fields present in r onto o. Absent fields keep o's value.
func (o Options) Merge(r Record) Options {
	if r.ShowAdvancedIBCTransfer != nil {
		o.ShowAdvancedIBCTransfer = *r.ShowAdvancedIBCTransfer
	}
	if r.ShowDarkMode != nil {
		o.ShowDarkMode = *r.ShowDarkMode
	}
	return o
}
