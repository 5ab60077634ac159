package callbacksig

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	sig := base64.StdEncoding.EncodeToString([]byte("outer-sig"))
	keySig := base64.StdEncoding.EncodeToString([]byte("key-sig"))

	valid := `{
		"signature": "` + sig + `",
		"intermediateSigningKey": {
			"signedKey": "{\"keyValue\":\"AAAA\",\"keyExpiration\":\"1754114831806\"}",
			"signatures": ["` + keySig + `"]
		},
		"protocolVersion": "ECv2SigningOnly",
		"signedMessage": "{\"classId\":\"1234.CLASS\",\"expTimeMillis\":\"1754114831806\"}"
	}`

	env, err := DecodeEnvelope([]byte(valid))
	if err != nil {
		t.Fatalf("DecodeEnvelope() unexpected error: %v", err)
	}

	if string(env.Signature) != "outer-sig" {
		t.Errorf("signature decoded to %q, want %q", env.Signature, "outer-sig")
	}
	if string(env.Intermediate.Signatures[0]) != "key-sig" {
		t.Errorf("intermediate signature decoded to %q, want %q", env.Intermediate.Signatures[0], "key-sig")
	}
	if env.ProtocolVersion != ProtocolSigningOnly {
		t.Errorf("protocolVersion = %q, want %q", env.ProtocolVersion, ProtocolSigningOnly)
	}
}

// the signedKey and signedMessage texts feed canonical encoding verbatim -
// the decoder must preserve their exact original form (field order,
// whitespace and all), not a re-serialization.
func TestDecodeEnvelopePreservesEmbeddedText(t *testing.T) {
	// deliberately unusual field order and spacing inside the embedded text
	signedMessage := `{ "expTimeMillis": "99",  "classId":"1234.C" }`
	signedKey := `{"keyExpiration": "88", "keyValue": "AAAA"}`

	payload := `{
		"signature": "` + base64.StdEncoding.EncodeToString([]byte("s")) + `",
		"intermediateSigningKey": {
			"signedKey": ` + quoteJSON(signedKey) + `,
			"signatures": ["` + base64.StdEncoding.EncodeToString([]byte("k")) + `"]
		},
		"protocolVersion": "ECv2SigningOnly",
		"signedMessage": ` + quoteJSON(signedMessage) + `
	}`

	env, err := DecodeEnvelope([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeEnvelope() unexpected error: %v", err)
	}

	if env.SignedMessage != signedMessage {
		t.Errorf("signedMessage was not preserved verbatim:\ngot  %q\nwant %q", env.SignedMessage, signedMessage)
	}
	if env.Intermediate.SignedKey != signedKey {
		t.Errorf("signedKey was not preserved verbatim:\ngot  %q\nwant %q", env.Intermediate.SignedKey, signedKey)
	}
}

func TestDecodeEnvelopeRejectsInvalidInput(t *testing.T) {
	sig := base64.StdEncoding.EncodeToString([]byte("s"))

	tests := []struct {
		name    string
		payload string
	}{
		{"not JSON", `{"signature":`},
		{"missing signature", `{"protocolVersion":"ECv2SigningOnly","signedMessage":"{}","intermediateSigningKey":{"signedKey":"{}","signatures":["` + sig + `"]}}`},
		{"missing protocolVersion", `{"signature":"` + sig + `","signedMessage":"{}","intermediateSigningKey":{"signedKey":"{}","signatures":["` + sig + `"]}}`},
		{"missing signedMessage", `{"signature":"` + sig + `","protocolVersion":"ECv2SigningOnly","intermediateSigningKey":{"signedKey":"{}","signatures":["` + sig + `"]}}`},
		{"missing signedKey", `{"signature":"` + sig + `","protocolVersion":"ECv2SigningOnly","signedMessage":"{}","intermediateSigningKey":{"signatures":["` + sig + `"]}}`},
		{"empty signatures list", `{"signature":"` + sig + `","protocolVersion":"ECv2SigningOnly","signedMessage":"{}","intermediateSigningKey":{"signedKey":"{}","signatures":[]}}`},
		{"signature not base64", `{"signature":"%%","protocolVersion":"ECv2SigningOnly","signedMessage":"{}","intermediateSigningKey":{"signedKey":"{}","signatures":["` + sig + `"]}}`},
		{"intermediate signature not base64", `{"signature":"` + sig + `","protocolVersion":"ECv2SigningOnly","signedMessage":"{}","intermediateSigningKey":{"signedKey":"{}","signatures":["%%"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tt.payload)); err == nil {
				t.Error("DecodeEnvelope() expected error, got nil")
			}
		})
	}
}

func TestParseIntermediateKeyMaterial(t *testing.T) {
	tests := []struct {
		name      string
		signedKey string
		wantErr   bool
		wantExp   int64
	}{
		{"expiration as string", `{"keyValue":"AAAA","keyExpiration":"1754114831806"}`, false, 1754114831806},
		{"expiration as number", `{"keyValue":"AAAA","keyExpiration":1754114831806}`, false, 1754114831806},
		{"missing keyValue", `{"keyExpiration":"1754114831806"}`, true, 0},
		{"missing keyExpiration", `{"keyValue":"AAAA"}`, true, 0},
		{"not JSON", `keyValue=AAAA`, true, 0},
		{"non-numeric expiration string", `{"keyValue":"AAAA","keyExpiration":"soon"}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			material, err := parseIntermediateKeyMaterial(tt.signedKey)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIntermediateKeyMaterial() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && material.ExpirationEpochMillis != tt.wantExp {
				t.Errorf("ExpirationEpochMillis = %d, want %d", material.ExpirationEpochMillis, tt.wantExp)
			}
		})
	}
}

func TestParseSignedMessageFields(t *testing.T) {
	tests := []struct {
		name          string
		signedMessage string
		wantErr       bool
	}{
		{"classId only", `{"classId":"1234.C","expTimeMillis":"99"}`, false},
		{"objectId only", `{"objectId":"1234.O","expTimeMillis":99}`, false},
		{"full message", `{"classId":"1234.C","objectId":"1234.O","eventType":"save","expTimeMillis":"99","count":"2","nonce":"abc"}`, false},
		{"neither classId nor objectId", `{"expTimeMillis":"99"}`, true},
		{"not JSON", `not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSignedMessageFields(tt.signedMessage)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseSignedMessageFields() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// quoteJSON renders s as a JSON string literal for embedding in test
// payloads.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
