package sl_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
)

func TestNew_ByEnvironment(t *testing.T) {
	tests := []struct {
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{env: "local", wantJSON: false, wantDebug: true},
		{env: "dev", wantJSON: true, wantDebug: true},
		{env: "prod", wantJSON: true, wantDebug: false},
		{env: "staging", wantJSON: true, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := sl.New(tt.env, &buf)

			log.Debug("debug line")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)

			buf.Reset()
			log.Info("info line")
			require.NotZero(t, buf.Len())
			assert.Equal(t, tt.wantJSON, json.Valid(bytes.TrimSpace(buf.Bytes())))
		})
	}
}
