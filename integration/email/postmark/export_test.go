package postmark

// NewWithAPI builds a Client around a fake transport.
func NewWithAPI(cfg Config, a api) *Client {
	return &Client{api: a, config: cfg}
}
