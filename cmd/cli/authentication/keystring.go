package authentication

// keystring.go keeps the CLI's tokens and play session key in the OS keyring.
import (
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	serviceName = "storyhub-cli"
	tokenKey    = "auth_tokens"
	sessionKey  = "play_session"
)

type StoredCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	ExpiresAt    int64  `json:"expires_at"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens() error {
	return keyring.Delete(serviceName, tokenKey)
}

// SessionKey returns the key that identifies this machine's play cursors, creating one
// on first use so walks can be resumed across runs.
func SessionKey() (string, error) {
	value, err := keyring.Get(serviceName, sessionKey)
	if err == nil {
		if _, perr := uuid.Parse(value); perr == nil {
			return value, nil
		}
	} else if err != keyring.ErrNotFound {
		return "", err
	}

	value = uuid.NewString()
	if err := keyring.Set(serviceName, sessionKey, value); err != nil {
		return "", err
	}
	return value, nil
}
