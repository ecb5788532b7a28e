package domain

// Link types embedded in the connector URL.
const (
	LinkTypeUniqueness         = "wld"
	LinkTypeCredentialCategory = "cred"
)

// UniquenessRequest asks the wallet for a proof of personhood at a minimum
// verification level. Signal is already hashed (see crypto.HashSignal).
type UniquenessRequest struct {
	AppID             AppID             `json:"app_id"`
	Action            string            `json:"action"`
	Signal            string            `json:"signal"`
	ActionDescription *string           `json:"action_description"`
	VerificationLevel VerificationLevel `json:"verification_level"`
	CredentialTypes   []CredentialType  `json:"credential_types"`
}

// CredentialCategoryRequest asks the wallet for a proof that the holder owns
// a credential in at least one of the listed categories.
type CredentialCategoryRequest struct {
	AppID                AppID    `json:"app_id"`
	Action               string   `json:"action"`
	Signal               string   `json:"signal"`
	ActionDescription    *string  `json:"action_description"`
	CredentialCategories []string `json:"credential_categories"`
}
