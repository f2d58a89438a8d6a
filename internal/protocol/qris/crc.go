package qris

import (
	"fmt"
	"strings"
)

const (
	crcInit = 0xFFFF
	crcPoly = 0x1021

	// crcHeader 校验标签头：tag 63 + 长度 04，本身也参与校验
	crcHeader = TagCRC + "04"
	crcHexLen = 4
)

// CRC16 计算 CRC16/CCITT-FALSE
// 初值0xFFFF，多项式0x1021，高位在前，无反射，无结果异或
func CRC16(data []byte) uint16 {
	crc := uint16(crcInit)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// ChecksumHex 计算字符串的 CRC16，返回4位大写十六进制
func ChecksumHex(s string) string {
	return fmt.Sprintf("%04X", CRC16([]byte(s)))
}

// VerifyChecksum 校验完整载荷末尾的 6304XXXX
// 校验范围：从载荷开头到 "6304"（含）
func VerifyChecksum(payload string) error {
	if len(payload) < len(crcHeader)+crcHexLen {
		return ErrChecksumMissing
	}

	split := len(payload) - crcHexLen
	if payload[split-len(crcHeader):split] != crcHeader {
		return ErrChecksumMissing
	}

	received := payload[split:]
	expected := ChecksumHex(payload[:split])
	if !strings.EqualFold(received, expected) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, received, expected)
	}
	return nil
}
