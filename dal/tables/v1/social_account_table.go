package v1

type Platform string

const (
	Platform_Facebook Platform = "facebook"
	Platform_TikTok   Platform = "tiktok"
	Platform_Discord  Platform = "discord"
	Platform_YouTube  Platform = "youtube"
	Platform_Mastodon Platform = "mastodon"
	Platform_Twitter  Platform = "twitter" // aka X
)

type SocialAccount struct {
	// Required
	AccountID string // guid, unique across platforms
	Platform  Platform

	// Optional - display metadata
	DisplayName string
	ProfileName string // provider-side handle, e.g. @name
	AvatarUrl   string
	ExternalID  string // provider-side identity, owned by the provider
	IsDefault   bool

	ConnectedAtEpochMilli int64 // GSI range key, list accounts in connect order
}

// AccountName picks the first non-empty display identity for feed stamping.
func (s SocialAccount) AccountName() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.ProfileName != "" {
		return s.ProfileName
	}
	return s.ExternalID
}
