package cpt

import "fmt"

// AnomalyKind classifies a non-fatal inconsistency found while decoding.
type AnomalyKind string

const (
	AnomalyUnknownProfileType    AnomalyKind = "unknown_profile_type"
	AnomalyDPIOutOfRange         AnomalyKind = "dpi_out_of_range"
	AnomalyUnknownFlagBits       AnomalyKind = "unknown_flag_bits"
	AnomalyReservedFieldNonzero  AnomalyKind = "reserved_field_nonzero"
	AnomalySentinelMismatch      AnomalyKind = "sentinel_field_mismatch"
	AnomalyChunkAreaSizeMismatch AnomalyKind = "chunk_area_size_mismatch"
	AnomalyUnidentifiedChunkID   AnomalyKind = "unidentified_chunk_id"
	AnomalyAdjacentRecordOverlap AnomalyKind = "adjacent_record_overlap"
	AnomalyV9WrittenAsV7         AnomalyKind = "v9_written_as_v7"
	AnomalyUnknownColorModel     AnomalyKind = "unknown_color_model"
	AnomalyUnknownCreator        AnomalyKind = "unknown_creator"
	AnomalyBlockOrderViolation   AnomalyKind = "block_order_violation"
	AnomalyDataRecordOutOfRange  AnomalyKind = "data_record_out_of_range"
)

// NoBlock marks an anomaly that belongs to the file rather than a block.
const NoBlock = -1

// Anomaly is one reported inconsistency. Block is NoBlock for file-level findings.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind" yaml:"kind"`
	Block  int         `json:"block" yaml:"block"`
	Offset int64       `json:"offset" yaml:"offset"`
	Msg    string      `json:"msg" yaml:"msg"`
}

func (a Anomaly) String() string {
	if a.Block == NoBlock {
		return fmt.Sprintf("[%s] 0x%08x: %s", a.Kind, a.Offset, a.Msg)
	}
	return fmt.Sprintf("[%s] block %04x @ 0x%08x: %s", a.Kind, a.Block, a.Offset, a.Msg)
}

// Anomalies accumulates findings in detection order.
type Anomalies struct {
	items []Anomaly
}

func (a *Anomalies) add(block int, offset int, kind AnomalyKind, format string, args ...any) {
	a.items = append(a.items, Anomaly{
		Kind:   kind,
		Block:  block,
		Offset: int64(offset),
		Msg:    fmt.Sprintf(format, args...),
	})
}

func (a *Anomalies) Items() []Anomaly { return a.items }
func (a *Anomalies) Len() int         { return len(a.items) }

// Count returns how many anomalies of kind were reported.
func (a *Anomalies) Count(kind AnomalyKind) int {
	n := 0
	for _, it := range a.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// InBlock returns the anomalies reported for block index i.
func (a *Anomalies) InBlock(i int) []Anomaly {
	var out []Anomaly
	for _, it := range a.items {
		if it.Block == i {
			out = append(out, it)
		}
	}
	return out
}
