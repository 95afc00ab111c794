package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/Mohsinsiddi/w3drop/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	airdropToken          string
	airdropRecipients     string
	airdropRecipientsFile string
	airdropAmounts        string
	airdropDecimals       int
	airdropYes            bool
	airdropPlain          bool
)

// maxPreviewRows caps the recipient table printed before confirmation.
const maxPreviewRows = 20

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Send an ERC-20 token to many recipients in one transaction",
	Long: `Validate the recipient and amount lists, approve the airdrop contract for
the exact total if the current allowance is short, then call airdropERC20.

Amounts are per recipient, in token units scaled by --decimals (default 18,
or the "decimals" config value). Recipients may be separated by commas,
spaces or newlines.

Examples:
  w3drop airdrop --token 0xTOKEN --recipients 0xA,0xB --amounts 1.5,2
  w3drop airdrop --token 0xTOKEN --recipients-file drop.csv --decimals 6
  w3drop airdrop --token 0xTOKEN --recipients 0xA --amounts 10 --network base --testnet --yes

Recipients file format (CSV, "#" starts a comment):
  address,amount
  0xAbc...,1.5
  0xDef...,2`,
	RunE: runAirdrop,
}

func runAirdrop(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	recipients, amounts, err := airdropInputs()
	if err != nil {
		return err
	}
	decimals := cfg.Decimals
	if cmd.Flags().Changed("decimals") {
		decimals = airdropDecimals
	}

	// Validate before touching the network.
	req, err := airdrop.Normalize(airdropToken, recipients, amounts, decimals)
	if err != nil {
		return describe(err)
	}

	w, mgr, err := loadSigningWallet()
	if err != nil {
		return err
	}
	contracts, err := config.LoadAirdropContracts(cfg.Dir())
	if err != nil {
		return err
	}

	spin := ui.NewSpinner("Connecting...")
	spin.Start()
	net, err := dial(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	session := wallet.NewSession(w, net.chainID)
	reader := contract.NewReader(net.client)
	writer := contract.NewWriter(net.client, wallet.NewSigner(w, mgr.Keystore()), net.chainID,
		contract.WithFallbackGas(config.AirdropGasLimit(len(req.Recipients))),
		contract.WithLogger(log),
	)
	waiter := contract.NewWaiter(net.client, cfg.TxTimeout())

	relay := &stepRelay{}
	orch := airdrop.NewOrchestrator(writer, waiter, contracts,
		airdrop.WithObserver(relay),
		airdrop.WithLogger(log),
	)

	spender, err := orch.AirdropContract(net.chainID)
	if err != nil {
		return describe(err)
	}

	spin = ui.NewSpinner("Reading token and allowance...")
	spin.Start()
	preview, err := loadPreview(ctx, reader, req, w.Account(), spender, decimals)
	spin.Stop()
	if err != nil {
		return describe(err)
	}

	fmt.Println(preview.render(net.label(), w))
	for _, warning := range preview.warnings() {
		fmt.Println(ui.Warn(warning))
	}
	fmt.Println()

	if !airdropYes && !ui.Confirm("Send this airdrop?") {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	sub := airdrop.Submission{
		Token:      airdropToken,
		Recipients: recipients,
		Amounts:    amounts,
		Decimals:   decimals,
		BaseUnits:  decimals == 0,
		Session:    session,
	}
	deps := airdrop.Deps{Reader: reader, Orchestrator: orch}

	var out airdrop.Outcome
	if airdropPlain || verbose || !isTerminal() {
		relay.to = ui.LineObserver(os.Stdout)
		out = airdrop.Run(ctx, deps, sub)
	} else {
		out, err = runWithProgress(ctx, deps, sub, relay, preview.state.NeedsApproval(), net.txURL)
		if err != nil {
			return err
		}
	}

	return report(out, preview, net)
}

// runWithProgress runs the submission behind the bubbletea progress view.
// Quitting the view stops waiting but cannot recall broadcast transactions.
func runWithProgress(ctx context.Context, deps airdrop.Deps, sub airdrop.Submission, relay *stepRelay, needsApproval bool, txURL func(string) string) (airdrop.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewAirdropProgress("Airdrop in progress", needsApproval, txURL))
	relay.to = ui.ProgramObserver(p)

	done := make(chan airdrop.Outcome, 1)
	go func() {
		out := airdrop.Run(ctx, deps, sub)
		done <- out
		p.Send(ui.DoneMsg{Outcome: out})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return airdrop.Outcome{}, fmt.Errorf("progress view: %w", err)
	}
	if m, ok := final.(ui.AirdropProgressModel); ok && m.Quitting {
		fmt.Println(ui.Warn("Stopped watching. Transactions already broadcast will still be mined."))
		cancel()
	}
	return <-done, nil
}

// stepRelay lets the observer be chosen after the Orchestrator is built.
type stepRelay struct{ to airdrop.Observer }

func (r *stepRelay) OnStep(e airdrop.StepEvent) {
	if r.to != nil {
		r.to.OnStep(e)
	}
}

// airdropInputs merges --recipients/--amounts with --recipients-file.
func airdropInputs() (recipients, amounts string, err error) {
	if airdropToken == "" {
		return "", "", fmt.Errorf("--token is required: provide the ERC-20 contract address")
	}
	recipients, amounts = airdropRecipients, airdropAmounts
	if airdropRecipientsFile != "" {
		if recipients != "" {
			return "", "", fmt.Errorf("use either --recipients or --recipients-file, not both")
		}
		var fileAmounts string
		recipients, fileAmounts, err = readRecipientsFile(airdropRecipientsFile)
		if err != nil {
			return "", "", err
		}
		if fileAmounts != "" {
			if amounts != "" {
				return "", "", fmt.Errorf("recipients file already has amounts; drop --amounts")
			}
			amounts = fileAmounts
		}
	}
	if amounts == "" {
		return "", "", fmt.Errorf("--amounts is required (one per recipient)")
	}
	return recipients, amounts, nil
}

// describe prefixes err with its category headline.
func describe(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", airdrop.Headline(err), err)
}

// ---------------------------------------------------------------------------
// preview
// ---------------------------------------------------------------------------

type airdropPreview struct {
	req        *airdrop.AirdropRequest
	token      *airdrop.TokenInfo
	state      *airdrop.AllowanceState
	spender    common.Address
	decimals   int
	listsValid *bool // nil when the contract could not be asked
}

func loadPreview(ctx context.Context, reader airdrop.ContractReader, req *airdrop.AirdropRequest, owner, spender common.Address, decimals int) (*airdropPreview, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()

	token, err := airdrop.ReadTokenInfo(ctx, reader, req.TokenAddress)
	if err != nil {
		return nil, err
	}
	state, err := airdrop.ResolveAllowance(ctx, reader, req.TokenAddress, owner, spender, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	p := &airdropPreview{req: req, token: token, state: state, spender: spender, decimals: decimals}
	if res, err := reader.ReadContract(ctx, spender, contract.Airdrop(), contract.FnAreListsValid, req.Recipients, req.Amounts); err == nil && len(res) == 1 {
		if ok, isBool := res[0].(bool); isBool {
			p.listsValid = &ok
		}
	} else if err != nil {
		log.WithError(err).Debug("areListsValid unavailable")
	}
	return p, nil
}

func (p *airdropPreview) tokens(v string) string {
	if p.token != nil && p.token.Symbol != "" {
		return v + " " + p.token.Symbol
	}
	return v
}

func (p *airdropPreview) render(network string, from *wallet.Wallet) string {
	sig, selector, _ := contract.MethodSelector(contract.Airdrop(), contract.FnAirdropERC20)
	total := units.ToDecimalString(p.req.TotalAmount, p.decimals)

	approval := ui.StyleSuccess.Render("sufficient, no approval needed")
	if p.state.NeedsApproval() {
		approval = ui.StyleWarning.Render(fmt.Sprintf("approve %s first (current %s)",
			p.tokens(total), units.ToDecimalString(p.state.Approved, p.decimals)))
	}

	name := p.req.TokenAddress.Hex()
	if p.token != nil && p.token.Name != "" {
		name = fmt.Sprintf("%s (%s)", p.token.Name, p.token.Symbol)
	}

	out := ui.KeyValueBlock("Airdrop Preview · "+network, [][2]string{
		{"From", ui.Addr(from.Address) + " " + ui.Meta("("+from.Name+")")},
		{"Token", name},
		{"Token Address", ui.Addr(p.req.TokenAddress.Hex())},
		{"Airdrop Contract", ui.Addr(p.spender.Hex())},
		{"Function", sig + " " + ui.Meta(selector)},
		{"Recipients", fmt.Sprintf("%d", len(p.req.Recipients))},
		{"Total", p.tokens(total)},
		{"Total (base units)", p.req.TotalAmount.String()},
		{"Balance", p.tokens(units.ToDecimalString(p.state.Balance, p.decimals))},
		{"Allowance", approval},
	})
	return out + "\n" + recipientTable(p.req, p.decimals, maxPreviewRows)
}

// warnings are printed under the preview; none of them block the airdrop.
func (p *airdropPreview) warnings() []string {
	var out []string
	if dups := p.req.Duplicates(); len(dups) > 0 {
		out = append(out, fmt.Sprintf("%d recipient(s) listed more than once, e.g. %s", len(dups), dups[0].Hex()))
	}
	if p.state.Insufficient() {
		out = append(out, fmt.Sprintf("balance %s is below the total %s; the airdrop will revert",
			units.ToDecimalString(p.state.Balance, p.decimals), units.ToDecimalString(p.req.TotalAmount, p.decimals)))
	}
	if p.token != nil && int(p.token.Decimals) != p.decimals {
		out = append(out, fmt.Sprintf("token reports %d decimals but amounts are scaled by %d; pass --decimals %d if that is wrong",
			p.token.Decimals, p.decimals, p.token.Decimals))
	}
	if p.listsValid != nil && !*p.listsValid {
		out = append(out, "the airdrop contract reports the lists as invalid")
	}
	return out
}

func recipientTable(req *airdrop.AirdropRequest, decimals, limit int) string {
	t := ui.NewTable([]ui.Column{
		{Title: "#", Width: 4},
		{Title: "Recipient", Width: 42},
		{Title: "Amount", Width: 24, Right: true},
	})
	for i, addr := range req.Recipients {
		if limit > 0 && i == limit {
			break
		}
		t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), addr.Hex(), units.ToDecimalString(req.Amounts[i], decimals)})
	}
	s := t.Render()
	if limit > 0 && len(req.Recipients) > limit {
		s += ui.Meta(fmt.Sprintf("… and %d more", len(req.Recipients)-limit)) + "\n"
	}
	return s
}

// ---------------------------------------------------------------------------
// result
// ---------------------------------------------------------------------------

func report(out airdrop.Outcome, p *airdropPreview, net *network) error {
	fmt.Println()
	if out.Approved() {
		fmt.Println(ui.Success(fmt.Sprintf("Approved %s to the airdrop contract %s",
			p.tokens(units.ToDecimalString(p.req.TotalAmount, p.decimals)), ui.Addr(p.spender.Hex()))))
	}

	if out.Status != airdrop.StatusConfirmed {
		pairs := [][2]string{{"Reason", out.Reason()}}
		var tf *airdrop.TransactionFailure
		if errors.As(out.Err, &tf) && tf.Broadcast() {
			pairs = append(pairs, [2]string{"Hash", ui.Addr(tf.Hash.Hex())})
			if u := net.txURL(tf.Hash.Hex()); u != "" {
				pairs = append(pairs, [2]string{"Explorer", u})
			}
		}
		if out.SubmissionID != "" {
			pairs = append(pairs, [2]string{"Submission", ui.Meta(out.SubmissionID)})
		}
		fmt.Println(ui.KeyValueBlock(airdrop.Headline(out.Err)+" ✗", pairs))
		return describe(out.Err)
	}

	req := out.Request
	if req == nil {
		req = p.req
	}
	pairs := [][2]string{
		{"Hash", ui.Addr(out.AirdropHash.Hex())},
		{"Block", fmt.Sprintf("%d", out.Receipt.BlockNumber)},
		{"Gas Used", fmt.Sprintf("%d", out.Receipt.GasUsed)},
		{"Recipients", fmt.Sprintf("%d", len(req.Recipients))},
		{"Total", p.tokens(units.ToDecimalString(req.TotalAmount, p.decimals))},
	}
	if u := net.txURL(out.AirdropHash.Hex()); u != "" {
		pairs = append(pairs, [2]string{"Explorer", u})
	}
	fmt.Println(ui.KeyValueBlock("Airdrop Confirmed ✓", pairs))
	fmt.Println(ui.Success(fmt.Sprintf("Sent %s to %d recipient(s):",
		p.tokens(units.ToDecimalString(req.TotalAmount, p.decimals)), len(req.Recipients))))
	fmt.Println(recipientTable(req, p.decimals, 0))
	return nil
}

func init() {
	f := airdropCmd.Flags()
	f.StringVar(&airdropToken, "token", "", "ERC-20 token address (required)")
	f.StringVar(&airdropRecipients, "recipients", "", "recipient addresses, comma or newline separated")
	f.StringVar(&airdropRecipientsFile, "recipients-file", "", "CSV file of address[,amount] lines")
	f.StringVar(&airdropAmounts, "amounts", "", "amounts, one per recipient, comma separated")
	f.IntVar(&airdropDecimals, "decimals", units.DefaultDecimals, "token decimals used to scale amounts")
	f.BoolVarP(&airdropYes, "yes", "y", false, "skip the confirmation prompt")
	f.BoolVar(&airdropPlain, "plain", false, "print progress lines instead of the live view")
}
