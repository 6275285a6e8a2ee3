package storage

type Equipment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	IsBillable bool   `json:"isBillable"`
	ClientID   string `json:"clientId"`
}
