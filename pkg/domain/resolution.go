package domain

import "fmt"

// Navigation modes computed for a resolved tile.
const (
	NavigationEmbedded              = "embedded"
	NavigationNewWindow             = "newWindow"
	NavigationNewWindowThenEmbedded = "newWindowThenEmbedded"
)

// ResolutionResult is the UI data produced by resolving a tile reference.
type ResolutionResult struct {
	Title                 string               `json:"title"`
	Icon                  string               `json:"icon,omitempty"`
	Subtitle              string               `json:"subTitle,omitempty"`
	Info                  string               `json:"info,omitempty"`
	Size                  string               `json:"size,omitempty"`
	NavigationMode        string               `json:"navigationMode,omitempty"`
	IsCustomTile          bool                 `json:"isCustomTile,omitempty"`
	TargetOutbound        *Outbound            `json:"targetOutbound,omitempty"`
	IndicatorDataSource   *IndicatorDataSource `json:"indicatorDataSource,omitempty"`
	URL                   string               `json:"url,omitempty"`
	ApplicationType       string               `json:"applicationType,omitempty"`
	AdditionalInformation string               `json:"additionalInformation,omitempty"`
	ComponentLoadInfo     string               `json:"componentLoadInfo,omitempty"`
	DeviceTypes           *DeviceTypes         `json:"deviceTypes,omitempty"`
}

// TileProperties are the visual properties pushed to an instantiated view.
type TileProperties struct {
	Title    string
	Subtitle string
	Icon     string
	Info     string
}

// View is a live UI component rendered for a resolved tile. The engine only
// keeps a non-owning reference to notify it about refreshes and changes.
type View interface {
	Refresh()
	SetVisible(visible bool)
	SetProperties(props TileProperties)
}

// ResolvedTile is the resolution cache value for one tile or catalog entry.
type ResolvedTile struct {
	TileIntent string           `json:"tileIntent"`
	Result     ResolutionResult `json:"result"`
	IsLink     bool             `json:"isLink"`
	Visible    bool             `json:"visible"`
	View       View             `json:"-"`
}

// Properties returns the visual properties of the resolved tile.
func (r ResolvedTile) Properties() TileProperties {
	return TileProperties{Title: r.Result.Title, Subtitle: r.Result.Subtitle, Icon: r.Result.Icon, Info: r.Result.Info}
}

// Severity grades a resolution failure.
type Severity string

const (
	// SeverityInfo marks expected failures that are filtered silently, such as dangling references.
	SeverityInfo Severity = "info"
	// SeverityError marks failures that indicate broken content.
	SeverityError Severity = "error"
	// SeverityFatal marks failures that abort a whole load.
	SeverityFatal Severity = "fatal"
)

// Failure records why a tile reference could not be resolved.
type Failure struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// NewFailure builds a Failure with a formatted message.
func NewFailure(severity Severity, format string, args ...any) Failure {
	return Failure{Severity: severity, Message: fmt.Sprintf(format, args...)}
}
