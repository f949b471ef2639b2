package model

import (
	"encoding/json"
	"time"
)

// If you want a helper for JSON unmarshal:
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// Application identity
// ----------------------------------------------------------------------

// ClientIdentity identifies the calling application to both the API gateway
// (subscription key) and the Live ID token endpoint (client id/secret).
// Immutable for the lifetime of a client instance.
type ClientIdentity struct {
	ClientID        string
	ClientSecret    string
	SubscriptionKey string
	// IsLegacyApp marks applications registered under the old Live SDK
	// portal, which use a "lc:"-prefixed client id and no secret when
	// exchanging refresh tokens.
	IsLegacyApp bool
}

// ----------------------------------------------------------------------
// MVP API data structures
// ----------------------------------------------------------------------

// Profile is the award profile of the signed-in MVP.
type Profile struct {
	MvpID               string           `json:"mvpId"`
	FullName            string           `json:"fullName"`
	DisplayName         string           `json:"displayName"`
	Headline            string           `json:"headline"`
	Biography           string           `json:"biography"`
	PrimaryEmailAddress string           `json:"primaryEmailAddress"`
	AwardCategory       string           `json:"awardCategory"`
	TechnicalExpertise  string           `json:"technicalExpertise"`
	FirstAwardYear      int              `json:"firstAwardYear"`
	YearsAsMvp          int              `json:"yearsAsMvp"`
	InTheSpotlight      bool             `json:"inTheSpotlight"`
	OnlineIdentities    []OnlineIdentity `json:"onlineIdentities,omitempty"`
	Certifications      []Certification  `json:"certifications,omitempty"`
	Languages           []string         `json:"languages,omitempty"`
	ShippingCountry     string           `json:"shippingCountry,omitempty"`
	ShippingStateCity   string           `json:"shippingStateCity,omitempty"`
	Metadata            *Metadata        `json:"metadata,omitempty"`
	LastLoggedIn        *time.Time       `json:"lastLoggedIn,omitempty"`
}

// Metadata carries page-level metadata some profile responses include.
type Metadata struct {
	PageTitle       string `json:"pageTitle,omitempty"`
	TemplateName    string `json:"templateName,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
}

// Certification is a Microsoft certification shown on a profile.
type Certification struct {
	ID                      string      `json:"id,omitempty"`
	Title                   string      `json:"title"`
	CertificationVisibility *Visibility `json:"certificationVisibility,omitempty"`
}

// Contribution is a single community contribution (talk, blog post, open
// source work, forum moderation, ...) as submitted for award consideration.
type Contribution struct {
	ContributionID         int64                   `json:"contributionId,omitempty"`
	ContributionTypeName   string                  `json:"contributionTypeName,omitempty"`
	ContributionType       *ContributionType       `json:"contributionType,omitempty"`
	ContributionTechnology *ContributionTechnology `json:"contributionTechnology,omitempty"`
	StartDate              time.Time               `json:"startDate"`
	Title                  string                  `json:"title"`
	ReferenceURL           string                  `json:"referenceUrl,omitempty"`
	Visibility             *Visibility             `json:"visibility,omitempty"`
	AnnualQuantity         int                     `json:"annualQuantity,omitempty"`
	SecondAnnualQuantity   int                     `json:"secondAnnualQuantity,omitempty"`
	AnnualReach            int                     `json:"annualReach,omitempty"`
	Description            string                  `json:"description,omitempty"`
}

// ContributionList is one page of contributions.
type ContributionList struct {
	Contributions      []Contribution `json:"contributions"`
	TotalContributions int            `json:"totalContributions"`
	PagingIndex        int            `json:"pagingIndex"`
}

// ContributionType is one of the fixed categories a contribution can have
// (e.g. "Speaking (Conference)", "Blog Site Posts").
type ContributionType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName,omitempty"`
}

// ContributionTechnology is a technology area a contribution applies to.
type ContributionTechnology struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AwardName     string `json:"awardName,omitempty"`
	AwardCategory string `json:"awardCategory,omitempty"`
}

// ContributionAreaCategory groups selectable technology areas under an award
// category, as returned by the contributionareas endpoint.
type ContributionAreaCategory struct {
	AwardCategory string                `json:"awardCategory"`
	Contributions []ContributionAreaSet `json:"contributions"`
}

// ContributionAreaSet is one award's selectable technology areas.
type ContributionAreaSet struct {
	AwardName        string                   `json:"awardName"`
	ContributionArea []ContributionTechnology `json:"contributionArea"`
}

// Visibility controls who can see an item (Microsoft only, other MVPs,
// everyone).
type Visibility struct {
	ID          int    `json:"id"`
	Description string `json:"description,omitempty"`
	LocalizeKey string `json:"localizeKey,omitempty"`
}

// OnlineIdentity links a profile to an external account (Twitter, GitHub,
// StackOverflow, ...).
type OnlineIdentity struct {
	PrivateSiteID            int            `json:"privateSiteId,omitempty"`
	SocialNetwork            *SocialNetwork `json:"socialNetwork,omitempty"`
	URL                      string         `json:"url"`
	DisplayName              string         `json:"displayName,omitempty"`
	UserID                   string         `json:"userId,omitempty"`
	OnlineIdentityVisibility *Visibility    `json:"onlineIdentityVisibility,omitempty"`
	ContributionCollected    bool           `json:"contributionCollected,omitempty"`
	PrivacyConsentStatus     bool           `json:"privacyConsentStatus,omitempty"`
}

// SocialNetwork describes the service an online identity points at.
type SocialNetwork struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// SharingPreference is a per-data-category consent flag on the profile.
type SharingPreference struct {
	DataKey   string `json:"dataKey"`
	DataLabel string `json:"dataLabel,omitempty"`
	Selected  bool   `json:"selected"`
}

// AwardQuestion is one award-consideration question for the current cycle.
type AwardQuestion struct {
	AwardQuestionID string `json:"awardQuestionId"`
	QuestionContent string `json:"questionContent"`
	IsRequired      bool   `json:"isRequired"`
	Sequence        int    `json:"sequence"`
}

// AwardAnswer is the MVP's saved answer to an award-consideration question.
type AwardAnswer struct {
	AwardQuestionID string `json:"awardQuestionId"`
	Answer          string `json:"answer"`
}
