package models

// AttributeSet is the closed, per-category attribute record produced by the
// name parser. Map() is the flat persisted form; zero-valued fields stay
// absent so consumers never see null placeholders.
type AttributeSet interface {
	CategoryKey() string
	Map() map[string]interface{}
}

type CPUAttributes struct {
	Socket      string
	IntelSeries string
	AMDSeries   string
}

func (a CPUAttributes) CategoryKey() string { return "cpu" }

func (a CPUAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "socket", a.Socket)
	putString(m, "intel_series", a.IntelSeries)
	putString(m, "amd_series", a.AMDSeries)
	return m
}

type GPUAttributes struct {
	VRAMGB int
	Series string
}

func (a GPUAttributes) CategoryKey() string { return "gpu" }

func (a GPUAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putInt(m, "vram_gb", a.VRAMGB)
	putString(m, "series", a.Series)
	return m
}

type MonitorAttributes struct {
	ScreenSizeInch float64
	Resolution     string
	PanelType      string
	RefreshRateHz  int
	HDR            string
}

func (a MonitorAttributes) CategoryKey() string { return "monitor" }

func (a MonitorAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	if a.ScreenSizeInch != 0 {
		m["screen_size_inch"] = a.ScreenSizeInch
	}
	putString(m, "resolution", a.Resolution)
	putString(m, "panel_type", a.PanelType)
	putInt(m, "refresh_rate_hz", a.RefreshRateHz)
	putString(m, "hdr", a.HDR)
	return m
}

type MotherboardAttributes struct {
	Socket       string
	FormFactor   string
	IntelChipset string
	AMDChipset   string
}

func (a MotherboardAttributes) CategoryKey() string { return "motherboard" }

func (a MotherboardAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "socket", a.Socket)
	putString(m, "form_factor", a.FormFactor)
	putString(m, "intel_chipset", a.IntelChipset)
	putString(m, "amd_chipset", a.AMDChipset)
	return m
}

type MemoryAttributes struct {
	Type       string
	CapacityGB int
	SpeedMHz   int
	FormFactor string
	ECC        string
}

func (a MemoryAttributes) CategoryKey() string { return "memory" }

func (a MemoryAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "type", a.Type)
	putInt(m, "capacity_gb", a.CapacityGB)
	putInt(m, "speed_mhz", a.SpeedMHz)
	putString(m, "form_factor", a.FormFactor)
	putString(m, "ecc", a.ECC)
	return m
}

type StorageAttributes struct {
	Type       string
	CapacityGB int
	FormFactor string
}

func (a StorageAttributes) CategoryKey() string { return "storage" }

func (a StorageAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "type", a.Type)
	putInt(m, "capacity_gb", a.CapacityGB)
	putString(m, "form_factor", a.FormFactor)
	return m
}

type PSUAttributes struct {
	Wattage    int
	Rating     string
	Modularity string
}

func (a PSUAttributes) CategoryKey() string { return "psu" }

func (a PSUAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putInt(m, "wattage", a.Wattage)
	putString(m, "rating", a.Rating)
	putString(m, "modularity", a.Modularity)
	return m
}

type CaseAttributes struct {
	Size string
}

func (a CaseAttributes) CategoryKey() string { return "case" }

func (a CaseAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "size", a.Size)
	return m
}

type CoolerAttributes struct {
	Type string
}

func (a CoolerAttributes) CategoryKey() string { return "cooler" }

func (a CoolerAttributes) Map() map[string]interface{} {
	m := map[string]interface{}{}
	putString(m, "type", a.Type)
	return m
}

func putString(m map[string]interface{}, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func putInt(m map[string]interface{}, key string, val int) {
	if val != 0 {
		m[key] = val
	}
}
