package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	mutate := func(f func(*Config)) Config {
		cfg := DefaultConfig()
		f(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero match IoU", mutate(func(c *Config) { c.MatchIoU = 0 }), true},
		{"match IoU above one", mutate(func(c *Config) { c.MatchIoU = 1.2 }), true},
		{"match IoU of exactly one", mutate(func(c *Config) { c.MatchIoU = 1 }), false},
		{"zero location IoU", mutate(func(c *Config) { c.LocationIoU = 0 }), true},
		{"zero grid cell", mutate(func(c *Config) { c.GridCellPx = 0 }), true},
		{"zero history", mutate(func(c *Config) { c.PositionHistoryMax = 0 }), true},
		{"zero rate cap", mutate(func(c *Config) { c.MaxEventsPerMinute = 0 }), true},
		{"negative loiter radius", mutate(func(c *Config) { c.LoiterRadius = -1 }), true},
		{"zero loiter time", mutate(func(c *Config) { c.LoiterTime = 0 }), true},
		{"negative park after", mutate(func(c *Config) { c.ParkAfter = -time.Minute }), true},
		{"zero event cooldown", mutate(func(c *Config) { c.EventCooldown = 0 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategoryFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, categoryPerson, categoryFor(ClassPerson))
	assert.Equal(t, categoryVehicle, categoryFor(ClassCar))
	assert.Equal(t, categoryVehicle, categoryFor(ClassTruck))
	assert.Equal(t, categoryPackage, categoryFor(ClassPackage))
	assert.Equal(t, categoryPackage, categoryFor("bicycle"))
}

func TestIsVehicleClass(t *testing.T) {
	t.Parallel()

	assert.True(t, IsVehicleClass(ClassCar))
	assert.True(t, IsVehicleClass(ClassTruck))
	assert.False(t, IsVehicleClass(ClassPerson))
	assert.False(t, IsVehicleClass(ClassPackage))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "black pickup", displayName(ClassTruck, "black", "black pickup"))
	assert.Equal(t, "black truck", displayName(ClassTruck, "black", ""))
	assert.Equal(t, "truck", displayName(ClassTruck, "", ""))
}
