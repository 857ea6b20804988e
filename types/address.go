package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/consensys/gnark-crypto/signature"
	"github.com/kysee/ztoken/crypto"
)

const ver = 0x01

func EncodeAddress(payload []byte) string {
	return "zt" + base58.CheckEncode(payload, ver)
}

func DecodeAddress(addr string) ([]byte, error) {
	if len(addr) < 2 {
		return nil, fmt.Errorf("address too short: got(%s)", addr)
	}
	if !strings.HasPrefix(addr, "zt") {
		return nil, fmt.Errorf("wrong prefix: got(%s)", addr[:2])
	}
	bz, _ver, err := base58.CheckDecode(addr[2:])
	if err != nil {
		return nil, err
	}
	if _ver != ver {
		return nil, fmt.Errorf("wrong version: expected(%d), got(%d)", ver, _ver)
	}
	return bz, nil
}

func Pub2Addr(pubKey signature.PublicKey) string {
	return EncodeAddress(pubKey.Bytes())
}

func Addr2Pub(addr string) (signature.PublicKey, error) {
	pubKeyBytes, err := DecodeAddress(addr)
	if err != nil {
		return nil, err
	}
	pubKey := crypto.NewPub()
	if _, err := pubKey.SetBytes(pubKeyBytes); err != nil {
		return nil, err
	}
	return pubKey, nil
}
