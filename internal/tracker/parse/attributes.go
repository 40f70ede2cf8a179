package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

var (
	reCapacityGB   = regexp.MustCompile(`\b(\d+)\s*gb\b`)
	reCapacityTB   = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*tb\b`)
	reMemorySpeed  = regexp.MustCompile(`\b(\d{3,5})\s*(?:mhz|mt/s)`)
	reScreenSize   = regexp.MustCompile(`\b(\d{2}(?:\.\d)?)\s*(?:"|''|inch\b|in\b)`)
	reRefreshRate  = regexp.MustCompile(`\b(\d{2,3})\s*hz\b`)
	reHDRTier      = regexp.MustCompile(`\bhdr\s?(\d{3,4})\b`)
	reWattage      = regexp.MustCompile(`\b(\d{3,4})\s?w\b`)
	reIntelChipset = regexp.MustCompile(`\b([zbhwx]\d{3,4})`)
	reAMDChipset   = regexp.MustCompile(`\b([xba]\d{3}e?)`)
	reNonECC       = regexp.MustCompile(`\bnon[- ]ecc\b`)
	reECC          = regexp.MustCompile(`\becc\b`)
	reRX           = regexp.MustCompile(`\brx\b`)
	reVA           = regexp.MustCompile(`\bva\b`)
	reTN           = regexp.MustCompile(`\btn\b`)
	reAIO          = regexp.MustCompile(`\baio\b`)
)

// Attributes routes a listing name to the extractor for its category and
// returns the typed attribute record. A category outside the known set yields
// nil. Pure: identical inputs always produce the identical record.
func Attributes(name, categoryName string) models.AttributeSet {
	lower := strings.ToLower(name)
	cat := strings.ToLower(categoryName)

	switch {
	case strings.Contains(cat, "graphics") || strings.Contains(cat, "gpu"):
		return extractGPU(lower)
	case strings.Contains(cat, "motherboard"):
		return extractMotherboard(lower)
	case strings.Contains(cat, "cpu") || strings.Contains(cat, "processor"):
		return extractCPU(lower)
	case strings.Contains(cat, "memory") || strings.Contains(cat, "ram"):
		return extractMemory(lower)
	case strings.Contains(cat, "storage") || strings.Contains(cat, "ssd") || strings.Contains(cat, "hdd"):
		return extractStorage(lower)
	case strings.Contains(cat, "power") || strings.Contains(cat, "psu"):
		return extractPSU(lower)
	case strings.Contains(cat, "monitor"):
		return extractMonitor(lower)
	case strings.Contains(cat, "case"):
		return extractCase(lower)
	case strings.Contains(cat, "cool"):
		return extractCooler(lower)
	}
	return nil
}

var socketPatterns = []struct {
	re     *regexp.Regexp
	socket string
}{
	{regexp.MustCompile(`\bam5\b`), "AM5"},
	{regexp.MustCompile(`\bam4\b`), "AM4"},
	{regexp.MustCompile(`\blga1700\b`), "LGA1700"},
	{regexp.MustCompile(`\blga1200\b`), "LGA1200"},
}

func socketOf(lower string) string {
	for _, sp := range socketPatterns {
		if sp.re.MatchString(lower) {
			return sp.socket
		}
	}
	return ""
}

var intelTiers = []struct {
	re     *regexp.Regexp
	series string
}{
	{regexp.MustCompile(`\bcore\s+ultra\s+9\b`), "Core Ultra 9"},
	{regexp.MustCompile(`\bcore\s+ultra\s+7\b`), "Core Ultra 7"},
	{regexp.MustCompile(`\bcore\s+ultra\s+5\b`), "Core Ultra 5"},
	{regexp.MustCompile(`\bi9\b`), "Core i9"},
	{regexp.MustCompile(`\bi7\b`), "Core i7"},
	{regexp.MustCompile(`\bi5\b`), "Core i5"},
	{regexp.MustCompile(`\bi3\b`), "Core i3"},
}

var amdTiers = []struct {
	re     *regexp.Regexp
	series string
}{
	{regexp.MustCompile(`\bryzen\s*9\b`), "Ryzen 9"},
	{regexp.MustCompile(`\bryzen\s*7\b`), "Ryzen 7"},
	{regexp.MustCompile(`\bryzen\s*5\b`), "Ryzen 5"},
	{regexp.MustCompile(`\bryzen\s*3\b`), "Ryzen 3"},
}

func extractCPU(lower string) models.AttributeSet {
	a := models.CPUAttributes{Socket: socketOf(lower)}
	// Series are keyed per vendor so an AMD name can never land in the Intel
	// column or vice versa.
	for _, t := range intelTiers {
		if t.re.MatchString(lower) {
			a.IntelSeries = t.series
			break
		}
	}
	for _, t := range amdTiers {
		if t.re.MatchString(lower) {
			a.AMDSeries = t.series
			break
		}
	}
	return a
}

func extractGPU(lower string) models.AttributeSet {
	var a models.GPUAttributes
	if m := reCapacityGB.FindStringSubmatch(lower); m != nil {
		a.VRAMGB, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(lower, "rtx"):
		a.Series = "RTX"
	case strings.Contains(lower, "gtx"):
		a.Series = "GTX"
	case reRX.MatchString(lower):
		a.Series = "RX"
	case strings.Contains(lower, "arc"):
		a.Series = "Arc"
	}
	return a
}

func extractMonitor(lower string) models.AttributeSet {
	var a models.MonitorAttributes
	if m := reScreenSize.FindStringSubmatch(lower); m != nil {
		a.ScreenSizeInch, _ = strconv.ParseFloat(m[1], 64)
	}
	switch {
	case strings.Contains(lower, "4k") || strings.Contains(lower, "uhd"):
		a.Resolution = "4K"
	case strings.Contains(lower, "1440p") || strings.Contains(lower, "qhd"):
		a.Resolution = "1440p"
	case strings.Contains(lower, "1080p") || strings.Contains(lower, "fhd") || strings.Contains(lower, "full hd"):
		a.Resolution = "1080p"
	}
	switch {
	case strings.Contains(lower, "oled"):
		a.PanelType = "OLED"
	case strings.Contains(lower, "ips"):
		a.PanelType = "IPS"
	case reVA.MatchString(lower):
		a.PanelType = "VA"
	case reTN.MatchString(lower):
		a.PanelType = "TN"
	}
	if m := reRefreshRate.FindStringSubmatch(lower); m != nil {
		a.RefreshRateHz, _ = strconv.Atoi(m[1])
	}
	if m := reHDRTier.FindStringSubmatch(lower); m != nil {
		a.HDR = "HDR" + m[1]
	} else if strings.Contains(lower, "hdr") {
		a.HDR = "HDR"
	}
	return a
}

func extractMotherboard(lower string) models.AttributeSet {
	a := models.MotherboardAttributes{Socket: socketOf(lower)}

	// Overlapping substrings: "ATX" may only be claimed after ruling out the
	// compound form factors that contain it.
	switch {
	case strings.Contains(lower, "micro-atx") || strings.Contains(lower, "micro atx") || strings.Contains(lower, "matx"):
		a.FormFactor = "Micro-ATX"
	case strings.Contains(lower, "e-atx") || strings.Contains(lower, "eatx"):
		a.FormFactor = "E-ATX"
	case strings.Contains(lower, "mini-itx") || strings.Contains(lower, "mini itx") || strings.Contains(lower, "itx"):
		a.FormFactor = "Mini-ITX"
	case strings.Contains(lower, "atx"):
		a.FormFactor = "ATX"
	}

	intelFirst := !strings.HasPrefix(a.Socket, "AM")
	if intelFirst {
		if m := reIntelChipset.FindStringSubmatch(lower); m != nil {
			a.IntelChipset = strings.ToUpper(m[1])
		} else if m := reAMDChipset.FindStringSubmatch(lower); m != nil {
			a.AMDChipset = strings.ToUpper(m[1])
		}
	} else {
		if m := reAMDChipset.FindStringSubmatch(lower); m != nil {
			a.AMDChipset = strings.ToUpper(m[1])
		} else if m := reIntelChipset.FindStringSubmatch(lower); m != nil {
			a.IntelChipset = strings.ToUpper(m[1])
		}
	}
	return a
}

func extractMemory(lower string) models.AttributeSet {
	var a models.MemoryAttributes
	switch {
	case strings.Contains(lower, "ddr5"):
		a.Type = "DDR5"
	case strings.Contains(lower, "ddr4"):
		a.Type = "DDR4"
	}
	if m := reCapacityGB.FindStringSubmatch(lower); m != nil {
		a.CapacityGB, _ = strconv.Atoi(m[1])
	}
	if m := reMemorySpeed.FindStringSubmatch(lower); m != nil {
		a.SpeedMHz, _ = strconv.Atoi(m[1])
	}
	if strings.Contains(lower, "sodimm") || strings.Contains(lower, "so-dimm") {
		a.FormFactor = "SODIMM"
	} else {
		a.FormFactor = "DIMM"
	}
	// "non-ecc" must be ruled out before the bare word probe: \becc\b matches
	// right after the hyphen.
	switch {
	case reNonECC.MatchString(lower):
		a.ECC = "Non-ECC"
	case reECC.MatchString(lower):
		a.ECC = "ECC"
	default:
		a.ECC = "Non-ECC"
	}
	return a
}

func extractStorage(lower string) models.AttributeSet {
	var a models.StorageAttributes
	switch {
	case strings.Contains(lower, "nvme"):
		a.Type = "NVMe SSD"
	case strings.Contains(lower, "ssd"):
		a.Type = "SATA SSD"
	case strings.Contains(lower, "hdd") || strings.Contains(lower, "hard drive"):
		a.Type = "HDD"
	}
	if m := reCapacityTB.FindStringSubmatch(lower); m != nil {
		tb, _ := strconv.ParseFloat(m[1], 64)
		a.CapacityGB = int(tb * 1000)
	} else if m := reCapacityGB.FindStringSubmatch(lower); m != nil {
		a.CapacityGB, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(lower, "m.2"):
		a.FormFactor = "M.2"
	case strings.Contains(lower, "2.5"):
		a.FormFactor = `2.5"`
	case strings.Contains(lower, "3.5"):
		a.FormFactor = `3.5"`
	}
	return a
}

func extractPSU(lower string) models.AttributeSet {
	var a models.PSUAttributes
	if m := reWattage.FindStringSubmatch(lower); m != nil {
		a.Wattage, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(lower, "titanium"):
		a.Rating = "80+ Titanium"
	case strings.Contains(lower, "platinum"):
		a.Rating = "80+ Platinum"
	case strings.Contains(lower, "gold"):
		a.Rating = "80+ Gold"
	case strings.Contains(lower, "silver"):
		a.Rating = "80+ Silver"
	case strings.Contains(lower, "bronze"):
		a.Rating = "80+ Bronze"
	case strings.Contains(lower, "white"):
		a.Rating = "80+ White"
	case strings.Contains(lower, "80 plus") || strings.Contains(lower, "80+"):
		// "80 Plus" with no tier word is the base (White) certification.
		a.Rating = "80+ White"
	}
	switch {
	case strings.Contains(lower, "fully modular") || strings.Contains(lower, "full modular"):
		a.Modularity = "Fully Modular"
	case strings.Contains(lower, "semi modular") || strings.Contains(lower, "semi-modular"):
		a.Modularity = "Semi-Modular"
	case strings.Contains(lower, "non modular") || strings.Contains(lower, "non-modular"):
		a.Modularity = "Non-Modular"
	}
	return a
}

func extractCase(lower string) models.AttributeSet {
	var a models.CaseAttributes
	switch {
	case strings.Contains(lower, "full tower"):
		a.Size = "Full Tower"
	case strings.Contains(lower, "mid tower"):
		a.Size = "Mid Tower"
	case strings.Contains(lower, "mini tower"):
		a.Size = "Mini Tower"
	case strings.Contains(lower, "small form factor") || strings.Contains(lower, "sff"):
		a.Size = "Small Form Factor"
	}
	return a
}

func extractCooler(lower string) models.AttributeSet {
	var a models.CoolerAttributes
	switch {
	case strings.Contains(lower, "liquid") || reAIO.MatchString(lower):
		a.Type = "Liquid Cooler"
	case strings.Contains(lower, "air cooler") || strings.Contains(lower, "tower"):
		a.Type = "Air Cooler"
	}
	return a
}
