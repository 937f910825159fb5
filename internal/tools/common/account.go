package common

import (
	"github.com/teemow/wbxmeet/internal/webexauth"
)

// GetAccountFromArgs returns the "account" argument, or the default
// account when it is missing or not a string.
func GetAccountFromArgs(args map[string]any) string {
	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return webexauth.DefaultAccount
}
