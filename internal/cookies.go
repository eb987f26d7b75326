package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "ecoreport_token"
)
