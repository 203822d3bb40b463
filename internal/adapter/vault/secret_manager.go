package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	return sm.readString("secret/data/database", "connection_string")
}

func (sm *SecretManager) GetGeminiAPIKey() (string, error) {
	return sm.readString("secret/data/gemini", "api_key")
}

func (sm *SecretManager) GetJWTSecret() (string, error) {
	return sm.readString("secret/data/jwt", "secret")
}

func (sm *SecretManager) GetTwilioCredentials() (sid, token string, err error) {
	sid, err = sm.readString("secret/data/twilio", "account_sid")
	if err != nil {
		return "", "", err
	}
	token, err = sm.readString("secret/data/twilio", "auth_token")
	if err != nil {
		return "", "", err
	}
	return sid, token, nil
}

func (sm *SecretManager) GetSendGridAPIKey() (string, error) {
	return sm.readString("secret/data/sendgrid", "api_key")
}

func (sm *SecretManager) readString(path, key string) (string, error) {
	secret, err := sm.client.Logical().Read(path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret at %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected secret shape at %s", path)
	}
	value, ok := data[key].(string)
	if !ok {
		return "", fmt.Errorf("missing %s in %s", key, path)
	}
	return value, nil
}
