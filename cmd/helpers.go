package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/rpc"
	"github.com/Mohsinsiddi/w3drop/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// network is a connected chain: registry entry, active mode and RPC client.
type network struct {
	chain   *chain.Chain
	mode    string
	client  *chain.EVMClient
	chainID int64 // as reported by the node
}

func (n *network) label() string {
	return fmt.Sprintf("%s (%s)", n.chain.Label(n.mode), n.mode)
}

func (n *network) txURL(hash string) string { return n.chain.TxURL(n.mode, hash) }

// resolveChain returns the --network chain or the configured default.
func resolveChain() (*chain.Chain, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	return resolveChainName(name)
}

func resolveChainName(name string) (*chain.Chain, error) {
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q: run `w3drop chains` to see supported chains", name)
	}
	return c, nil
}

// rpcCandidates lists the endpoints to try, custom ones first. W3DROP_RPC_URL
// pins a single endpoint.
func rpcCandidates(c *chain.Chain, mode string) []string {
	if u := strings.TrimSpace(os.Getenv(config.EnvRPCURL)); u != "" {
		return []string{u}
	}
	urls := append([]string(nil), cfg.GetRPCs(c.Name)...)
	return append(urls, c.RPCs(mode)...)
}

// pickBestRPC selects an endpoint for c using the configured algorithm.
func pickBestRPC(ctx context.Context, c *chain.Chain, mode string) (string, error) {
	urls := rpcCandidates(c, mode)
	if len(urls) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s (%s): add one with `w3drop rpc add %s <url>`", c.Name, mode, c.Name)
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.Select(ctx, urls, algo, c.ID(mode))
	if err != nil {
		return "", fmt.Errorf("selecting RPC for %s: %w", c.Label(mode), err)
	}
	log.WithFields(logrus.Fields{"rpc": url, "algorithm": algo, "candidates": len(urls)}).Debug("rpc selected")
	return url, nil
}

// dial resolves the chain, picks an RPC and asks the node for its chain id.
func dial(ctx context.Context) (*network, error) {
	c, err := resolveChain()
	if err != nil {
		return nil, err
	}
	mode := cfg.NetworkMode
	url, err := pickBestRPC(ctx, c, mode)
	if err != nil {
		return nil, err
	}
	client := chain.NewEVMClient(url)

	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id from %s: %w", url, err)
	}
	if want := c.ID(mode); id != want {
		log.WithFields(logrus.Fields{"want": want, "got": id}).Warn("node serves a different chain than configured")
	}
	return &network{chain: c, mode: mode, client: client, chainID: id}, nil
}

// newKeystore returns the file keyring when configured, else the OS keychain.
func newKeystore() (wallet.KeystoreBackend, error) {
	if cfg.Keyring == "file" {
		return wallet.FileKeystore(cfg.KeyringDir(), keyring.TerminalPrompt)
	}
	return wallet.DefaultKeystore(), nil
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() (*wallet.Manager, error) {
	ks, err := newKeystore()
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(ks),
	), nil
}

// resolveWallet returns the --wallet wallet, the configured default, or the
// manager's default, in that order.
func resolveWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	w, err := mgr.Resolve(name)
	if errors.Is(err, wallet.ErrNoWallet) {
		return nil, fmt.Errorf("no wallet configured: add one with `w3drop wallet add <name> --key <hex>`")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: run `w3drop wallet list`", err)
	}
	return w, nil
}

// loadSigningWallet resolves the active wallet and checks it can sign.
func loadSigningWallet() (*wallet.Wallet, *wallet.Manager, error) {
	mgr, err := newWalletManager()
	if err != nil {
		return nil, nil, err
	}
	w, err := resolveWallet(mgr)
	if err != nil {
		return nil, nil, err
	}
	if !w.CanSign() {
		return nil, nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign transactions\n  To add a signing wallet: w3drop wallet add <name> --key <private-key>",
			w.Name,
		)
	}
	return w, mgr, nil
}

// resolveAddress accepts a 0x address or a wallet name. Empty means the
// active wallet.
func resolveAddress(s string) (common.Address, error) {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	mgr, err := newWalletManager()
	if err != nil {
		return common.Address{}, err
	}
	if s == "" {
		w, err := resolveWallet(mgr)
		if err != nil {
			return common.Address{}, err
		}
		return w.Account(), nil
	}
	w, err := mgr.Get(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%q is neither an address nor a known wallet", s)
	}
	return w.Account(), nil
}

// parseAddress validates a 0x address flag.
func parseAddress(flag, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, fmt.Errorf("--%s is required", flag)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("--%s: %q is not a valid address", flag, s)
	}
	return common.HexToAddress(s), nil
}

// readRecipientsFile parses a recipients file: one "address[,amount]" per
// line, '#' comments and an optional "address,amount" header. It returns
// the recipients and amounts as comma separated lists for Normalize; amounts
// is empty when the file carries none.
func readRecipientsFile(path string) (recipients, amounts string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("opening recipients file: %w", err)
	}
	defer f.Close()
	return parseRecipients(f)
}

func parseRecipients(r io.Reader) (string, string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var addrs, amts []string
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", fmt.Errorf("recipients file: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "address") {
			continue
		}
		if len(rec) > 2 {
			return "", "", fmt.Errorf("recipients file line %d: want address[,amount], got %d fields", line, len(rec))
		}
		addrs = append(addrs, strings.TrimSpace(rec[0]))
		if len(rec) == 2 {
			amts = append(amts, strings.TrimSpace(rec[1]))
		}
	}
	if len(amts) > 0 && len(amts) != len(addrs) {
		return "", "", fmt.Errorf("recipients file: %d of %d lines have an amount; give all or none", len(amts), len(addrs))
	}
	return strings.Join(addrs, ","), strings.Join(amts, ","), nil
}

// firstBig unpacks a single uint256 return value.
func firstBig(out []any) (*big.Int, bool) {
	if len(out) == 0 {
		return nil, false
	}
	v, ok := out[0].(*big.Int)
	return v, ok && v != nil
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
