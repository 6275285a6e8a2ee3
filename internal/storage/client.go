package storage

type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ClientWithEquipment struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Equipment []*Equipment `json:"equipment"`
}
