package config

import "github.com/zalando/go-keyring"

// The only secret worth keyring storage here is the Gemini key: the Unsplash
// key is rate-limit-scoped and the WhatsApp credentials live in whatsmeow's
// own sqlite store.
const (
	keyringService   = "wabot"
	keyringGeminiKey = "gemini_key"
)

// StoreGeminiKey puts the AI credential in the OS keyring so it can be kept
// out of config.yaml and .env.
func StoreGeminiKey(value string) error {
	return keyring.Set(keyringService, keyringGeminiKey, value)
}

// geminiKeyFromKeyring is the last step of the credential chain. Absence and
// keyring errors both read as "not stored".
func geminiKeyFromKeyring() string {
	val, err := keyring.Get(keyringService, keyringGeminiKey)
	if err != nil {
		return ""
	}
	return val
}

// DeleteGeminiKey removes the stored credential.
func DeleteGeminiKey() error {
	return keyring.Delete(keyringService, keyringGeminiKey)
}

// KeyringAvailable checks the OS keyring with a write+delete cycle. Headless
// hosts without a secret service fail the write, and setup then falls back to
// writing the key into config.yaml.
func KeyringAvailable() bool {
	const checkKey = "__wabot_check__"
	if err := keyring.Set(keyringService, checkKey, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, checkKey)
	return true
}
