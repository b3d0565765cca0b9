package session

import "github.com/google/uuid"

// DeviceID returns the stable install identifier, minting and persisting
// one on first use. Mobile platforms do not expose a hardware id to the
// app, so a random UUID stored alongside the session serves as the
// device fingerprint.
func DeviceID(kv KV) (string, error) {
	if v, ok, err := kv.Get(deviceKey); err == nil && ok && v != "" {
		return v, nil
	}
	id := uuid.NewString()
	if err := kv.SetMany(map[string]string{deviceKey: id}); err != nil {
		return "", err
	}
	return id, nil
}
