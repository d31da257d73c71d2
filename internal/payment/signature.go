package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SignatureHeader = "X-Payment-Signature"

// 署名の有効期間。古いタイムスタンプはリプレイとして拒否する。
const signatureTolerance = 5 * time.Minute

var ErrInvalidSignature = errors.New("invalid signature")

// ヘッダ形式: t=<unix>,v1=<hex(hmac-sha256("<t>.<payload>"))>
func Sign(payload []byte, secret string, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, computeHMAC(payload, secret, ts))
}

// 生のpayloadに対して署名を検証する。失敗したら何も状態を変えないこと。
func VerifySignature(payload []byte, sigHeader string, secret string) error {
	ts, sig, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	//タイムスタンプの鮮度チェック
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := time.Since(time.Unix(unix, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	expected := computeHMAC(payload, secret, ts)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

func computeHMAC(payload []byte, secret string, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(h string) (ts string, sig string, err error) {
	for _, part := range strings.Split(h, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sig = kv[1]
		}
	}
	if ts == "" || sig == "" {
		return "", "", errors.New("malformed signature header")
	}
	return ts, sig, nil
}
