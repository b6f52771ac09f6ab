package types

import (
	"errors"
	"testing"
)

func TestEntityChecksumVectors(t *testing.T) {
	tests := []struct {
		name   string
		ledger LedgerID
		id     string
		want   string
	}{
		{name: "0.0.1 mainnet", ledger: LedgerIDMainnet, id: "0.0.1", want: "dfkxr"},
		{name: "0.0.3 mainnet", ledger: LedgerIDMainnet, id: "0.0.3", want: "tzfmz"},
		{name: "0.0.123 mainnet", ledger: LedgerIDMainnet, id: "0.0.123", want: "vfmkw"},
		{name: "0.0.1002 mainnet", ledger: LedgerIDMainnet, id: "0.0.1002", want: "yihjb"},
		{name: "0.0.123 testnet", ledger: LedgerIDTestnet, id: "0.0.123", want: "esxsf"},
		{name: "0.0.1002 testnet", ledger: LedgerIDTestnet, id: "0.0.1002", want: "hvsqk"},
		{name: "0.0.555 testnet", ledger: LedgerIDTestnet, id: "0.0.555", want: "syags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entityChecksum(tt.ledger, tt.id)
			if got != tt.want {
				t.Errorf("entityChecksum(%s, %s) = %q, want %q", tt.ledger, tt.id, got, tt.want)
			}
		})
	}
}

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantErr      bool
		wantNum      uint64
		wantChecksum string
		wantAlias    bool
	}{
		{name: "plain id", input: "0.0.123", wantNum: 123},
		{name: "id with checksum", input: "0.0.123-vfmkw", wantNum: 123, wantChecksum: "vfmkw"},
		{name: "uppercase checksum is normalized", input: "0.0.123-VFMKW", wantNum: 123, wantChecksum: "vfmkw"},
		{name: "alias id", input: "0.0.302a300506032b6570032100aa", wantAlias: true},
		{name: "checksum too short", input: "0.0.123-vfmk", wantErr: true},
		{name: "checksum too long", input: "0.0.123-vfmkww", wantErr: true},
		{name: "checksum with digits", input: "0.0.123-vfmk1", wantErr: true},
		{name: "alias with checksum", input: "0.0.abcdef-vfmkw", wantErr: true},
		{name: "missing segment", input: "0.123", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage num", input: "0.0.x!z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseAccountID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccountID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if id.IsAlias() != tt.wantAlias {
				t.Errorf("IsAlias() = %v, want %v", id.IsAlias(), tt.wantAlias)
			}
			if !tt.wantAlias && id.Num != tt.wantNum {
				t.Errorf("Num = %d, want %d", id.Num, tt.wantNum)
			}
			if id.Checksum() != tt.wantChecksum {
				t.Errorf("Checksum() = %q, want %q", id.Checksum(), tt.wantChecksum)
			}
		})
	}
}

func TestEntityIDValidate(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		ledger       LedgerID
		wantErr      bool
		wantExpected string
	}{
		{name: "matching checksum passes", input: "0.0.123-vfmkw", ledger: LedgerIDMainnet},
		{name: "no checksum always passes", input: "0.0.123", ledger: LedgerIDMainnet},
		{name: "alias always passes", input: "0.0.abcdef01", ledger: LedgerIDMainnet},
		{
			// 校验和属于 0.0.123，被安到 0.0.1002 上
			name:         "checksum of another entity fails",
			input:        "0.0.1002-vfmkw",
			ledger:       LedgerIDMainnet,
			wantErr:      true,
			wantExpected: "yihjb",
		},
		{
			// 主网校验和对测试网账本无效
			name:         "checksum of another ledger fails",
			input:        "0.0.123-vfmkw",
			ledger:       LedgerIDTestnet,
			wantErr:      true,
			wantExpected: "esxsf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseAccountID(tt.input)
			if err != nil {
				t.Fatalf("ParseAccountID(%q) failed: %v", tt.input, err)
			}

			err = id.Validate(tt.ledger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var checksumErr *BadEntityIDChecksumError
			if !errors.As(err, &checksumErr) {
				t.Fatalf("Validate() error type = %T, want *BadEntityIDChecksumError", err)
			}
			if checksumErr.Expected != tt.wantExpected {
				t.Errorf("Expected = %q, want %q", checksumErr.Expected, tt.wantExpected)
			}
		})
	}
}

func TestStringWithChecksum(t *testing.T) {
	id := NewAccountID(0, 0, 123)
	got := id.StringWithChecksum(LedgerIDMainnet)
	if got != "0.0.123-vfmkw" {
		t.Errorf("StringWithChecksum(mainnet) = %q, want %q", got, "0.0.123-vfmkw")
	}

	// 往返：带校验和的字符串形式重新解析后必须通过验证
	parsed, err := ParseAccountID(got)
	if err != nil {
		t.Fatalf("ParseAccountID(%q) failed: %v", got, err)
	}
	if err := parsed.Validate(LedgerIDMainnet); err != nil {
		t.Errorf("Validate() after round trip failed: %v", err)
	}
}

func TestLedgerIDFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "mainnet by name", input: "mainnet", want: "mainnet"},
		{name: "testnet by name", input: "testnet", want: "testnet"},
		{name: "previewnet by name", input: "previewnet", want: "previewnet"},
		{name: "hex form", input: "00", want: "mainnet"},
		{name: "unknown name", input: "zz-not-hex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, err := LedgerIDFromString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LedgerIDFromString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && ledger.String() != tt.want {
				t.Errorf("String() = %q, want %q", ledger.String(), tt.want)
			}
		})
	}
}
