package latency

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// TimingConfig holds clock counts for 8086 instruction classes, the
// effective address calculation, and the prefetch path. Defaults follow the
// 8086 family user's manual.
type TimingConfig struct {
	// MovRegRegLatency is MOV between registers, including segment
	// registers. Default: 2 clocks.
	MovRegRegLatency uint64 `json:"mov_reg_reg_latency"`

	// MovRegMemLatency is MOV from memory into a register, plus EA.
	// Default: 8 clocks.
	MovRegMemLatency uint64 `json:"mov_reg_mem_latency"`

	// MovMemRegLatency is MOV from a register into memory, plus EA.
	// Default: 9 clocks.
	MovMemRegLatency uint64 `json:"mov_mem_reg_latency"`

	// MovRegImmLatency is MOV of immediate data into a register.
	// Default: 4 clocks.
	MovRegImmLatency uint64 `json:"mov_reg_imm_latency"`

	// MovMemImmLatency is MOV of immediate data into memory, plus EA.
	// Default: 10 clocks.
	MovMemImmLatency uint64 `json:"mov_mem_imm_latency"`

	// MovAccumulatorLatency is MOV between the accumulator and a direct
	// address. Default: 10 clocks.
	MovAccumulatorLatency uint64 `json:"mov_accumulator_latency"`

	// AluRegRegLatency is an ALU operation between registers.
	// Default: 3 clocks.
	AluRegRegLatency uint64 `json:"alu_reg_reg_latency"`

	// AluRegMemLatency is an ALU operation with a register destination and
	// a memory source, plus EA. Default: 9 clocks.
	AluRegMemLatency uint64 `json:"alu_reg_mem_latency"`

	// AluMemRegLatency is an ALU operation with a memory destination, plus
	// EA. Default: 16 clocks.
	AluMemRegLatency uint64 `json:"alu_mem_reg_latency"`

	// AluRegImmLatency is an ALU operation with immediate data and a
	// register destination. Default: 4 clocks.
	AluRegImmLatency uint64 `json:"alu_reg_imm_latency"`

	// AluMemImmLatency is an ALU operation with immediate data and a
	// memory destination, plus EA. Default: 17 clocks.
	AluMemImmLatency uint64 `json:"alu_mem_imm_latency"`

	// CmpMemRegLatency is CMP of memory against a register, plus EA. CMP
	// reads its destination without writing it back. Default: 9 clocks.
	CmpMemRegLatency uint64 `json:"cmp_mem_reg_latency"`

	// CmpMemImmLatency is CMP of memory against immediate data, plus EA.
	// Default: 10 clocks.
	CmpMemImmLatency uint64 `json:"cmp_mem_imm_latency"`

	// EADirectLatency is the EA time of a direct address. Default: 6.
	EADirectLatency uint64 `json:"ea_direct_latency"`

	// EABaseOrIndexLatency is the EA time of a single base or index
	// register. Default: 5.
	EABaseOrIndexLatency uint64 `json:"ea_base_or_index_latency"`

	// EABaseIndexFastLatency is the EA time of BP+DI and BX+SI. Default: 7.
	EABaseIndexFastLatency uint64 `json:"ea_base_index_fast_latency"`

	// EABaseIndexSlowLatency is the EA time of BP+SI and BX+DI. Default: 8.
	EABaseIndexSlowLatency uint64 `json:"ea_base_index_slow_latency"`

	// EADisplacementLatency is added to the EA time when a displacement
	// is encoded. Default: 4.
	EADisplacementLatency uint64 `json:"ea_displacement_latency"`

	// PrefetchCacheSize is the prefetch cache capacity in bytes.
	// Default: 1024.
	PrefetchCacheSize int `json:"prefetch_cache_size"`

	// PrefetchAssociativity is the number of ways. Default: 2.
	PrefetchAssociativity int `json:"prefetch_associativity"`

	// PrefetchBlockSize is the line size in bytes. Default: 16.
	PrefetchBlockSize int `json:"prefetch_block_size"`

	// PrefetchHitLatency is the clocks for a queue refill served from the
	// prefetch cache. Default: 0, the refill overlaps execution.
	PrefetchHitLatency uint64 `json:"prefetch_hit_latency"`

	// PrefetchMissLatency is the clocks for each line fetched over the bus.
	// Default: 4, one bus cycle.
	PrefetchMissLatency uint64 `json:"prefetch_miss_latency"`
}

// DefaultTimingConfig returns a TimingConfig with 8086 default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		MovRegRegLatency:       2,
		MovRegMemLatency:       8,
		MovMemRegLatency:       9,
		MovRegImmLatency:       4,
		MovMemImmLatency:       10,
		MovAccumulatorLatency:  10,
		AluRegRegLatency:       3,
		AluRegMemLatency:       9,
		AluMemRegLatency:       16,
		AluRegImmLatency:       4,
		AluMemImmLatency:       17,
		CmpMemRegLatency:       9,
		CmpMemImmLatency:       10,
		EADirectLatency:        6,
		EABaseOrIndexLatency:   5,
		EABaseIndexFastLatency: 7,
		EABaseIndexSlowLatency: 8,
		EADisplacementLatency:  4,
		PrefetchCacheSize:      1024,
		PrefetchAssociativity:  2,
		PrefetchBlockSize:      16,
		PrefetchHitLatency:     0,
		PrefetchMissLatency:    4,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read timing config file")
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse timing config")
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize timing config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write timing config file")
	}

	return nil
}

// Validate checks that instruction clocks are non-zero and the prefetch
// cache geometry is usable.
func (c *TimingConfig) Validate() error {
	nonZero := []struct {
		name  string
		value uint64
	}{
		{"mov_reg_reg_latency", c.MovRegRegLatency},
		{"mov_reg_mem_latency", c.MovRegMemLatency},
		{"mov_mem_reg_latency", c.MovMemRegLatency},
		{"mov_reg_imm_latency", c.MovRegImmLatency},
		{"mov_mem_imm_latency", c.MovMemImmLatency},
		{"mov_accumulator_latency", c.MovAccumulatorLatency},
		{"alu_reg_reg_latency", c.AluRegRegLatency},
		{"alu_reg_mem_latency", c.AluRegMemLatency},
		{"alu_mem_reg_latency", c.AluMemRegLatency},
		{"alu_reg_imm_latency", c.AluRegImmLatency},
		{"alu_mem_imm_latency", c.AluMemImmLatency},
		{"cmp_mem_reg_latency", c.CmpMemRegLatency},
		{"cmp_mem_imm_latency", c.CmpMemImmLatency},
	}
	for _, f := range nonZero {
		if f.value == 0 {
			return errors.Errorf("%s must be > 0", f.name)
		}
	}

	if c.PrefetchBlockSize <= 0 || c.PrefetchBlockSize&(c.PrefetchBlockSize-1) != 0 {
		return errors.New("prefetch_block_size must be a power of two")
	}
	if c.PrefetchAssociativity <= 0 {
		return errors.New("prefetch_associativity must be > 0")
	}
	if c.PrefetchCacheSize < c.PrefetchBlockSize*c.PrefetchAssociativity ||
		c.PrefetchCacheSize%(c.PrefetchBlockSize*c.PrefetchAssociativity) != 0 {
		return errors.New("prefetch_cache_size must be a multiple of block size times associativity")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
