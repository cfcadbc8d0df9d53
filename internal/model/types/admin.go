package types

import "gopkg.in/guregu/null.v3"

type PurgeCacheRequest struct {
	Name string      `json:"name" validate:"required"`
	Key  null.String `json:"key"`
}

type LocaleResponse struct {
	Country  string `json:"country"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	Source   string `json:"source"`
}
