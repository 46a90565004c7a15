package bmff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekHeader(t *testing.T) {
	tests := []struct {
		name       string
		build      func() []byte
		wantErr    bool
		wantKind   Kind
		wantSize   uint64
		wantType   BoxType
		wantHdrLen int
	}{
		{
			name: "short form",
			build: func() []byte {
				buf := make([]byte, 16)
				be.PutUint32(buf[0:4], 16)
				copy(buf[4:8], "free")
				return buf
			},
			wantSize:   16,
			wantType:   BoxType{'f', 'r', 'e', 'e'},
			wantHdrLen: 8,
		},
		{
			name: "size zero means to end",
			build: func() []byte {
				buf := make([]byte, 20)
				copy(buf[4:8], "mdat")
				return buf
			},
			wantSize:   20,
			wantType:   BoxType{'m', 'd', 'a', 't'},
			wantHdrLen: 8,
		},
		{
			name: "extended 64-bit size",
			build: func() []byte {
				buf := make([]byte, 24)
				be.PutUint32(buf[0:4], 1)
				copy(buf[4:8], "mdat")
				be.PutUint64(buf[8:16], 24)
				return buf
			},
			wantSize:   24,
			wantType:   BoxType{'m', 'd', 'a', 't'},
			wantHdrLen: 16,
		},
		{
			name: "truncated header",
			build: func() []byte {
				return make([]byte, 4)
			},
			wantErr:  true,
			wantKind: Truncated,
		},
		{
			name: "declared size overruns container",
			build: func() []byte {
				buf := make([]byte, 16)
				be.PutUint32(buf[0:4], 100)
				copy(buf[4:8], "free")
				return buf
			},
			wantErr:  true,
			wantKind: Truncated,
		},
		{
			name: "declared size smaller than the header itself",
			build: func() []byte {
				buf := make([]byte, 16)
				be.PutUint32(buf[0:4], 4)
				copy(buf[4:8], "free")
				return buf
			},
			wantErr:  true,
			wantKind: Malformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.build()
			h, err := peekHeader(buf, 0, len(buf))
			if tt.wantErr {
				require.Error(t, err)
				bErr, ok := err.(*Error)
				require.True(t, ok, "expected *Error, got %T", err)
				assert.Equal(t, tt.wantKind, bErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, h.Size)
			assert.Equal(t, tt.wantType, h.Type)
			assert.Equal(t, tt.wantHdrLen, h.HeaderLen)
		})
	}
}

func TestReaderWalksSiblingsAndStopsAtEnd(t *testing.T) {
	w := NewWriter(make([]byte, 0, 64))
	w.WriteFtyp(BoxType{'i', 's', 'o', '6'}, 0, nil)
	w.WriteMdat([]byte{1, 2, 3})
	buf := w.Bytes()

	r := NewReader(buf)
	var types []string
	for r.Next() {
		types = append(types, r.Type().String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if len(types) != 2 || types[0] != "ftyp" || types[1] != "mdat" {
		t.Fatalf("types = %v", types)
	}
}

func TestReaderEnterExitRestoresSiblingWalk(t *testing.T) {
	w := NewWriter(make([]byte, 0, 64))
	w.StartBox(TypeMoof)
	w.WriteMfhd(7)
	w.EndBox()
	w.WriteMdat([]byte{9})
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeMoof {
		t.Fatal("expected moof first")
	}
	r.Enter()
	if !r.Next() || r.Type() != TypeMfhd {
		t.Fatal("expected mfhd inside moof")
	}
	r.Exit()
	if !r.Next() || r.Type() != TypeMdat {
		t.Fatalf("expected mdat as moof's sibling, got %s", r.Type())
	}
}

func TestWriterEndBoxWithoutStartBoxPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	w := NewWriter(make([]byte, 0, 8))
	w.EndBox()
}
