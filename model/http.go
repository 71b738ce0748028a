package model

type InspectResponse struct {
	Mode        string `json:"mode"`
	PayloadSize int    `json:"payload_size"`
	Pairs       int    `json:"pairs"`
	DecodedSize int    `json:"decoded_size"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
