package domain

// Application types that influence navigation mode computation.
const (
	ApplicationTypeURL    = "URL"
	ApplicationTypeSAPUI5 = "SAPUI5"
	ApplicationTypeWDA    = "WDA"
	ApplicationTypeTR     = "TR"
	ApplicationTypeWCF    = "WCF"
)

// AppDescriptor carries the inbounds and outbounds an application declares.
type AppDescriptor struct {
	ID                    string              `json:"id" yaml:"id"`
	Title                 string              `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle              string              `json:"subTitle,omitempty" yaml:"subTitle,omitempty"`
	Icon                  string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Info                  string              `json:"info,omitempty" yaml:"info,omitempty"`
	ApplicationType       string              `json:"applicationType,omitempty" yaml:"applicationType,omitempty"`
	AdditionalInformation string              `json:"additionalInformation,omitempty" yaml:"additionalInformation,omitempty"`
	URL                   string              `json:"url,omitempty" yaml:"url,omitempty"`
	DeviceTypes           *DeviceTypes        `json:"deviceTypes,omitempty" yaml:"deviceTypes,omitempty"`
	CustomTile            bool                `json:"customTile,omitempty" yaml:"customTile,omitempty"`
	Inbounds              map[string]Inbound  `json:"inbounds,omitempty" yaml:"inbounds,omitempty"`
	Outbounds             map[string]Outbound `json:"outbounds,omitempty" yaml:"outbounds,omitempty"`
}

// Inbound is an application's declared entry point.
type Inbound struct {
	SemanticObject      string               `json:"semanticObject" yaml:"semanticObject"`
	Action              string               `json:"action" yaml:"action"`
	Title               string               `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle            string               `json:"subTitle,omitempty" yaml:"subTitle,omitempty"`
	Icon                string               `json:"icon,omitempty" yaml:"icon,omitempty"`
	Info                string               `json:"info,omitempty" yaml:"info,omitempty"`
	Signature           Signature            `json:"signature" yaml:"signature"`
	HideLauncher        bool                 `json:"hideLauncher,omitempty" yaml:"hideLauncher,omitempty"`
	DeviceTypes         *DeviceTypes         `json:"deviceTypes,omitempty" yaml:"deviceTypes,omitempty"`
	IndicatorDataSource *IndicatorDataSource `json:"indicatorDataSource,omitempty" yaml:"indicatorDataSource,omitempty"`
}

// Signature declares the parameters an inbound accepts.
type Signature struct {
	Parameters           map[string]ParameterSpec `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	AdditionalParameters string                   `json:"additionalParameters,omitempty" yaml:"additionalParameters,omitempty"`
}

// ParameterSpec declares one inbound parameter.
type ParameterSpec struct {
	Required     bool   `json:"required,omitempty" yaml:"required,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Filter       string `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Outbound is an application's declared navigation target when leaving it.
type Outbound struct {
	SemanticObject string            `json:"semanticObject" yaml:"semanticObject"`
	Action         string            `json:"action" yaml:"action"`
	Parameters     map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// DeviceTypes lists the form factors an application supports.
type DeviceTypes struct {
	Desktop bool `json:"desktop" yaml:"desktop"`
	Tablet  bool `json:"tablet" yaml:"tablet"`
	Phone   bool `json:"phone" yaml:"phone"`
}

// DeviceClass is the form factor of the current device.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceTablet  DeviceClass = "tablet"
	DevicePhone   DeviceClass = "phone"
)

// Supports reports whether the device class is allowed. A nil receiver supports everything.
func (d *DeviceTypes) Supports(class DeviceClass) bool {
	if d == nil {
		return true
	}
	switch class {
	case DeviceTablet:
		return d.Tablet
	case DevicePhone:
		return d.Phone
	default:
		return d.Desktop
	}
}
