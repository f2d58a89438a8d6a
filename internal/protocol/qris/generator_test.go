package qris

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestGenerator_Generate(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	suffix := "5802ID5922LUTIFY STORE OK23176316006BEKASI61051711162070703A016304"

	tests := []struct {
		amount int64
		tag54  string
		crc    string
	}{
		{amount: 100, tag54: "5403100", crc: "8B57"},
		{amount: 10000, tag54: "540510000", crc: "529A"},
		{amount: 500000, tag54: "5406500000", crc: "979B"},
	}

	for _, tt := range tests {
		got, err := g.Generate(tt.amount)
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", tt.amount, err)
		}
		// 54 紧邻 58 之前
		if !strings.HasSuffix(got, tt.tag54+suffix+tt.crc) {
			t.Errorf("Generate(%d) = %s", tt.amount, got)
		}
		if err := VerifyChecksum(got); err != nil {
			t.Errorf("Generate(%d) produced invalid checksum: %v", tt.amount, err)
		}
	}
}

func TestGenerator_GenerateExact(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	got, err := g.Generate(10000)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "00020101021226670016COM.NOBUBANK.WWW01189360050300000879140214210379661725380303UMI" +
		"51440014ID.CO.QRIS.WWW0215ID20253865385780303UMI520454115303360" +
		"540510000" +
		"5802ID5922LUTIFY STORE OK23176316006BEKASI61051711162070703A01" +
		"6304529A"
	if got != want {
		t.Errorf("Generate(10000) mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestGenerator_AmountOutOfRange(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	for _, amount := range []int64{99, 500001} {
		if _, err := g.Generate(amount); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("Generate(%d) expected ErrAmountOutOfRange, got %v", amount, err)
		}
	}
}

func TestGenerator_CustomLimits(t *testing.T) {
	g, err := NewGenerator(sampleTemplate, WithAmountLimits(AmountLimits{Min: 1000, Max: 2000}))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if g.Limits().Min != 1000 || g.Limits().Max != 2000 {
		t.Errorf("Limits() = %+v", g.Limits())
	}
	if _, err := g.Generate(999); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("expected ErrAmountOutOfRange, got %v", err)
	}
	if _, err := g.Generate(2000); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerator_Static(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	got, err := g.Static()
	if err != nil {
		t.Fatalf("Static failed: %v", err)
	}
	if got != sampleTemplate {
		t.Errorf("Static() = %s, want template unchanged", got)
	}
}

func TestGenerator_TemplateNotShared(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	tpl := g.Template()
	tpl[0].Value = "99"

	if _, err := g.Generate(1000); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	again, err := g.Static()
	if err != nil {
		t.Fatalf("Static failed: %v", err)
	}
	if again != sampleTemplate {
		t.Error("template changed after Generate / external edit")
	}
}

func TestNewGenerator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		opts     []GeneratorOption
		wantErr  error
	}{
		{name: "结构错误", template: "0002", wantErr: ErrMalformedTLV},
		{name: "CRC错误", template: sampleTemplate[:len(sampleTemplate)-4] + "0000", wantErr: ErrChecksumMismatch},
		{name: "缺少00", template: "5802ID", wantErr: ErrMissingRequiredTag},
		{name: "缺少58", template: "0002015303360", wantErr: ErrMissingAnchorTag},
		{name: "非法上下限", template: sampleTemplate, opts: []GeneratorOption{WithAmountLimits(AmountLimits{Min: 5, Max: 1})}, wantErr: ErrInvalidAmountLimits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.template, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewGenerator() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewGenerator_WithoutCRC(t *testing.T) {
	g, err := NewGenerator("0002015802ID")
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	got, err := g.Generate(10000)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "0002010102125405100005802ID63049A4E" {
		t.Errorf("Generate = %s", got)
	}
}

func TestGenerator_Concurrent(t *testing.T) {
	g, err := NewGenerator(sampleTemplate)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	amounts := make([]int64, 64)
	want := make([]string, len(amounts))
	for i := range amounts {
		amounts[i] = int64(100 + i*997)
		want[i], err = g.Generate(amounts[i])
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", amounts[i], err)
		}
	}

	got := make([]string, len(amounts))
	var wg sync.WaitGroup
	for i := range amounts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = g.Generate(amounts[i])
		}(i)
	}
	wg.Wait()

	for i := range amounts {
		if got[i] != want[i] {
			t.Errorf("amount %d: concurrent result differs", amounts[i])
		}
	}
}
