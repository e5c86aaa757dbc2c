package dto

import (
	"github.com/allisson/envelope/internal/message/domain"
)

// SuiteResponse describes one algorithm suite.
type SuiteResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MessageFormat   int    `json:"message_format"`
	KeyLength       int    `json:"key_length"`
	KeyDerivation   bool   `json:"key_derivation"`
	Signed          bool   `json:"signed"`
	Committing      bool   `json:"committing"`
	AllowsEncrypt   bool   `json:"allows_encrypt"`
	AllowsDecrypt   bool   `json:"allows_decrypt"`
	DefaultForWrite bool   `json:"default_for_write"`
}

// ListSuitesResponse lists the registered suites in id order.
type ListSuitesResponse struct {
	CommitmentPolicy string          `json:"commitment_policy"`
	Data             []SuiteResponse `json:"data"`
}

// MapSuitesToListResponse describes suites as seen under policy.
func MapSuitesToListResponse(
	suites []domain.AlgorithmSuite,
	policy domain.CommitmentPolicy,
	defaultSuite domain.SuiteID,
) ListSuitesResponse {
	data := make([]SuiteResponse, 0, len(suites))
	for _, suite := range suites {
		data = append(data, SuiteResponse{
			ID:              suite.ID.String(),
			Name:            suite.Name,
			MessageFormat:   int(suite.MessageFormat),
			KeyLength:       suite.EncryptionKeyLength,
			KeyDerivation:   suite.KDF == domain.KDFHKDF,
			Signed:          suite.Signed(),
			Committing:      suite.Committing(),
			AllowsEncrypt:   policy.CheckEncrypt(suite) == nil,
			AllowsDecrypt:   policy.CheckDecrypt(suite) == nil,
			DefaultForWrite: suite.ID == defaultSuite,
		})
	}

	return ListSuitesResponse{
		CommitmentPolicy: policy.String(),
		Data:             data,
	}
}
