package cloudinary

// Conf is read from .cloudinary.json
type Conf struct {
	CloudName string `json:"cloud_name"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Folder    string `json:"folder"`   // default shops_logos
	BaseURL   string `json:"base_url"` // default https://api.cloudinary.com/v1_1
}

const (
	DefaultBaseURL = "https://api.cloudinary.com/v1_1"
	DefaultFolder  = "shops_logos"
)
