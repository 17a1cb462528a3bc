// Package telemetry reads the live battery state of charge from a Sigenergy
// plant over Modbus TCP, satisfying runner.InitialSOCSource so a day-ahead
// plan can start from the battery's actual charge instead of an assumed one.
package telemetry

import (
	"fmt"

	"github.com/devskill-org/dayahead-planner/sigenergy"
)

// PlantReader reads live battery SOC from a Sigenergy EMS over Modbus TCP.
type PlantReader struct {
	client *sigenergy.SigenModbusClient
}

// NewPlantReader connects to the plant at address (host:port) as the given
// slave ID. The Modbus TCP session stays open for the lifetime of the reader.
func NewPlantReader(address string, slaveID byte) (*PlantReader, error) {
	client, err := sigenergy.NewTCPClient(address, slaveID)
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect: %w", err)
	}
	return &PlantReader{client: client}, nil
}

// Close releases the underlying Modbus connection.
func (r *PlantReader) Close() error {
	return r.client.Close()
}

// ReadSOC reads the plant's current battery state of charge as a fraction in
// [0,1]. Satisfies runner.InitialSOCSource.
func (r *PlantReader) ReadSOC() (float64, error) {
	info, err := r.client.ReadPlantRunningInfo()
	if err != nil {
		return 0, fmt.Errorf("telemetry: read plant info: %w", err)
	}
	soc := info.ESSSOC / 100.0
	if soc < 0 || soc > 1 {
		return 0, fmt.Errorf("telemetry: implausible SOC reading %.1f%%", info.ESSSOC)
	}
	return soc, nil
}
