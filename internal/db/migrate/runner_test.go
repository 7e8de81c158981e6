package migrate

import (
	"errors"
	"testing"
)

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		dsn       string
		direction string
		wantErr   error
	}{
		{name: "empty dsn", dsn: " ", direction: DirectionUp, wantErr: ErrMissingDSN},
		{name: "bad direction", dsn: "postgres://localhost/db", direction: "sideways", wantErr: ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := Run(tt.dsn, tt.direction)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
