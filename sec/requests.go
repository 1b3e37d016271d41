package sec

type LoginRequestBody struct {
	Password string `json:"password"`
}

func ExtractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
