package resolver

import (
	"strings"

	"launchpad/pkg/domain"
)

const ui5ComponentPrefix = "SAPUI5.Component="

// NavigationMode computes how a resolved application is opened. inPlace lists
// the application types configured to open embedded.
func NavigationMode(res domain.ResolutionResult, inPlace map[string]bool) string {
	switch res.ApplicationType {
	case domain.ApplicationTypeSAPUI5, "":
		return domain.NavigationEmbedded
	case domain.ApplicationTypeURL:
		if strings.HasPrefix(res.AdditionalInformation, ui5ComponentPrefix) || inPlace[domain.ApplicationTypeURL] {
			return domain.NavigationEmbedded
		}
		return domain.NavigationNewWindow
	case domain.ApplicationTypeWDA, domain.ApplicationTypeTR, domain.ApplicationTypeWCF:
		if inPlace[res.ApplicationType] {
			return domain.NavigationEmbedded
		}
		return domain.NavigationNewWindowThenEmbedded
	default:
		if inPlace[res.ApplicationType] {
			return domain.NavigationEmbedded
		}
		return domain.NavigationNewWindow
	}
}
