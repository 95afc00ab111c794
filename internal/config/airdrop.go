package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const airdropFile = "airdrop.yaml"

// AnvilChainID is the chain id of a local anvil node.
const AnvilChainID int64 = 31337

// AnvilAirdropContract is the first contract deployed by the default anvil
// account, where the local airdrop contract lands.
var AnvilAirdropContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// ErrUnsupportedChain is returned when no airdrop contract is configured for a chain.
var ErrUnsupportedChain = errors.New("no airdrop contract configured for chain")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AirdropContracts maps chain id to the airdrop contract deployed there.
// It is read-only once loaded.
type AirdropContracts struct {
	byChain map[int64]common.Address
}

// NewAirdropContracts builds a table from m plus the anvil default.
func NewAirdropContracts(m map[int64]common.Address) *AirdropContracts {
	t := &AirdropContracts{byChain: map[int64]common.Address{AnvilChainID: AnvilAirdropContract}}
	for id, addr := range m {
		t.byChain[id] = addr
	}
	return t
}

// Lookup returns the airdrop contract for chainID.
func (a *AirdropContracts) Lookup(chainID int64) (common.Address, error) {
	addr, ok := a.byChain[chainID]
	if !ok {
		return common.Address{}, fmt.Errorf("%w %d", ErrUnsupportedChain, chainID)
	}
	return addr, nil
}

// ChainIDs lists configured chains.
func (a *AirdropContracts) ChainIDs() []int64 {
	out := make([]int64, 0, len(a.byChain))
	for id := range a.byChain {
		out = append(out, id)
	}
	return out
}

// LoadAirdropContracts reads <dir>/airdrop.yaml and merges it over the
// built-in anvil entry. A missing file is not an error.
func LoadAirdropContracts(dir string) (*AirdropContracts, error) {
	data, err := os.ReadFile(filepath.Join(dir, airdropFile))
	if os.IsNotExist(err) {
		return NewAirdropContracts(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", airdropFile, err)
	}
	return ParseAirdropContracts(data)
}

// ParseAirdropContracts decodes airdrop.yaml content.
func ParseAirdropContracts(data []byte) (*AirdropContracts, error) {
	var f AirdropFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", airdropFile, err)
	}

	m := make(map[int64]common.Address, len(f.Chains))
	for id, c := range f.Chains {
		if id <= 0 {
			return nil, fmt.Errorf("%s: invalid chain id %d", airdropFile, id)
		}
		if !addressPattern.MatchString(c.AirdropContract) {
			return nil, fmt.Errorf("%s: chain %d: invalid airdrop_contract %q", airdropFile, id, c.AirdropContract)
		}
		m[id] = common.HexToAddress(c.AirdropContract)
	}
	return NewAirdropContracts(m), nil
}

// SaveAirdropContract writes or replaces one chain entry in <dir>/airdrop.yaml.
func SaveAirdropContract(dir string, chainID int64, addr common.Address) error {
	path := filepath.Join(dir, airdropFile)

	var f AirdropFile
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parsing %s: %w", airdropFile, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", airdropFile, err)
	}
	if f.Chains == nil {
		f.Chains = make(map[int64]AirdropChain)
	}
	f.Chains[chainID] = AirdropChain{AirdropContract: addr.Hex()}

	out, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}
