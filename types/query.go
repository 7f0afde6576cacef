package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// DocumentParams is the body of POST /documents.
type DocumentParams struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// SearchParams is the body of POST /search. A nil limit means the default.
type SearchParams struct {
	Query string `json:"query" validate:"required"`
	Limit *int   `json:"limit,omitempty"`
}

// EmbedParams is the body of POST /embed.
type EmbedParams struct {
	Text string `json:"text" validate:"required"`
}

// EmbeddingSettingsParams is the body of POST /settings/embedding. A nil
// GoogleAPIKey keeps the previously configured key.
type EmbeddingSettingsParams struct {
	Provider     string  `json:"provider" validate:"required"`
	GoogleAPIKey *string `json:"google_api_key,omitempty"`
}

// StorageSettingsParams is the body of POST /settings/database.
type StorageSettingsParams struct {
	Provider    string `json:"provider" validate:"required"`
	PostgresDSN string `json:"postgres_dsn,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

func (p *DocumentParams) Validate() map[string]string          { return validateStruct(p) }
func (p *SearchParams) Validate() map[string]string            { return validateStruct(p) }
func (p *EmbedParams) Validate() map[string]string             { return validateStruct(p) }
func (p *EmbeddingSettingsParams) Validate() map[string]string { return validateStruct(p) }
func (p *StorageSettingsParams) Validate() map[string]string   { return validateStruct(p) }
