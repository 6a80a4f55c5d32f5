package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jroimartin/gocui"
	"gopkg.in/yaml.v2"

	"github.com/pocketcoin/pocketcoin/commands"
	"github.com/pocketcoin/pocketcoin/config"
	"github.com/pocketcoin/pocketcoin/full_node"
	"github.com/pocketcoin/pocketcoin/layout"
	"github.com/pocketcoin/pocketcoin/model"
	"github.com/pocketcoin/pocketcoin/wallet"
)

var (
	configPath *string
	walletPath *string
	chainPath  *string
	newWallet  *bool
	debugMode  *bool
)

func init() {
	configPath = flag.String("config_path", "full_node/cmd/config.yaml", "path to the engine config")
	walletPath = flag.String("wallet_path", "wallet.json", "path to the encrypted wallet file")
	chainPath = flag.String("chain_path", "", "optional chain snapshot to load at startup")
	newWallet = flag.Bool("new_wallet", false, "generate a new wallet at wallet_path")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
}

func readConfig(path string) (config.AppConfig, error) {
	c := config.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	text, _ := reader.ReadString('\n')
	return strings.TrimSpace(text)
}

// Generate a wallet or load and unlock an existing one before the UI
// starts. All prompting happens here, the core never does interactive I/O.
func setupWallet() *wallet.Wallet {
	if *newWallet {
		w, err := wallet.NewWallet()
		if err != nil {
			log.Fatalln("failed to generate wallet:", err)
		}
		password := promptPassword("Choose a wallet password: ")
		if err := w.Save(*walletPath, password); err != nil {
			log.Fatalln("failed to save wallet:", err)
		}
		fmt.Println("New wallet saved to", *walletPath)
		fmt.Println("Address:", w.Address)
		return w
	}
	w, err := wallet.LoadWallet(*walletPath)
	if err != nil {
		log.Fatalln("failed to load wallet (use -new_wallet to create one):", err)
	}
	password := promptPassword("Wallet password: ")
	if err := w.Unlock(password); err != nil {
		log.Fatalln("failed to unlock wallet:", err)
	}
	fmt.Println("Wallet unlocked. Address:", w.Address)
	return w
}

// ParseCommand reads stdin lines in debug mode.
func ParseCommand(cmd chan commands.Command) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		text = strings.Replace(text, "\n", "", -1)
		c, err := commands.CreateCommand(text)
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

// Return a gui handle if not in debug mode.
func ListenOnInput(cmd chan commands.Command, debug bool) *gocui.Gui {
	if debug {
		go ParseCommand(cmd)
		return nil
	}
	g, err := layout.CreateGui(cmd, "full_node/cmd/usage.txt")
	if err != nil {
		log.Fatalln(err)
	}
	go func() {
		if err := g.MainLoop(); err != nil {
			if err == gocui.ErrQuit {
				g.Close()
				os.Exit(0)
			}
			os.Exit(1)
		}
	}()
	return g
}

// HandleCommand dispatches parsed commands to the wallet and the node.
// Mining runs on its own goroutine, a separate buffered ctl channel relays
// restart/stop so this loop never blocks on a running search.
func HandleCommand(cmd chan commands.Command, node *full_node.FullNode, w *wallet.Wallet, g *gocui.Gui) {
	ctl := make(chan commands.Command, 1)
	isRunning := false
	for {
		c := <-cmd
		switch c.Op {
		case commands.START:
			if isRunning {
				layout.Log(g, "mining has already been started")
				continue
			}
			isRunning = true
			go func() {
				for {
					res, err := node.Mine(ctl, func(attempts uint64) {
						layout.Log(g, "mining attempt: %d", attempts)
					})
					if err != nil {
						layout.Log(g, "mining: %v", err)
						isRunning = false
						return
					}
					if res.Op == commands.STOP {
						isRunning = false
						return
					}
					if res.Op == commands.RESTART {
						// Cancelled or the tip moved, nothing was appended.
						// Loop around and assemble a fresh candidate.
						continue
					}
					layout.Log(g, "block %d appended, balance: %d", node.Height(), node.Balance(w.Address))
				}
			}()
		case commands.RESTART, commands.STOP:
			if !isRunning {
				layout.Log(g, "no running mining task to restart or stop")
				continue
			}
			go func() {
				// Relay in a separate goroutine so HandleCommand never
				// blocks on a finished miner.
				ctl <- c
			}()
		case commands.SEND:
			recipient := c.Args[0]
			amount, _ := strconv.ParseUint(c.Args[1], 10, 64)
			fee, _ := strconv.ParseUint(c.Args[2], 10, 64)
			message := strings.Join(c.Args[3:], " ")
			tx, err := w.NewTransaction(recipient, amount, fee, message)
			if err != nil {
				layout.Log(g, "send: %v", err)
				continue
			}
			if err := node.AddTransactionToPool(tx); err != nil {
				layout.Log(g, "send: %v", err)
				continue
			}
			layout.Log(g, "transaction %s submitted", tx.Hash)
		case commands.BALANCE:
			address := w.Address
			if len(c.Args) == 1 {
				address = c.Args[0]
			}
			layout.Log(g, "balance of %s: %d", address, node.Balance(address))
		case commands.ADDRESS:
			layout.Log(g, "address: %s", w.Address)
		case commands.HISTORY:
			limit := 10
			if len(c.Args) == 1 {
				limit, _ = strconv.Atoi(c.Args[0])
			}
			for _, tx := range node.TransactionHistory(w.Address, limit) {
				layout.Log(g, "%s: %s -> %s amount %d fee %d", tx.Hash, tx.Sender, tx.Recipient, tx.Amount, tx.Fee)
			}
		case commands.PENDING:
			for _, tx := range node.PendingTransactions() {
				layout.Log(g, "pending %s: %s -> %s amount %d fee %d", tx.Hash, tx.Sender, tx.Recipient, tx.Amount, tx.Fee)
			}
		case commands.SHOW:
			depth, _ := strconv.Atoi(c.Args[0])
			for _, b := range node.RecentBlocks(depth) {
				layout.Log(g, "block %d [%s] txs=%d nonce=%d prev=%s", b.Index, b.Hash, len(b.Txs), b.Nonce, b.PrevHash)
			}
		case commands.LOCK:
			if err := w.Lock(c.Args[0]); err != nil {
				layout.Log(g, "lock: %v", err)
				continue
			}
			layout.Log(g, "wallet locked")
		case commands.UNLOCK:
			if err := w.Unlock(c.Args[0]); err != nil {
				layout.Log(g, "unlock: %v", err)
				continue
			}
			layout.Log(g, "wallet unlocked")
		case commands.SAVE:
			if err := node.SaveChain(c.Args[0]); err != nil {
				layout.Log(g, "save: %v", err)
				continue
			}
			layout.Log(g, "chain saved to %s", c.Args[0])
		case commands.LOAD:
			if err := node.LoadChain(c.Args[0]); err != nil {
				var cve *model.ChainValidationError
				if errors.As(err, &cve) {
					layout.Log(g, "load: snapshot corrupt at block %d: %s", cve.Index, cve.Invariant)
				} else {
					layout.Log(g, "load: %v", err)
				}
				continue
			}
			layout.Log(g, "chain loaded from %s, height %d", c.Args[0], node.Height())
		default:
			layout.Log(g, "unrecognized command: %v", c)
		}
	}
}


func main() {
	flag.Parse()

	cfg, err := readConfig(*configPath)
	if err != nil {
		log.Println("using default config:", err)
	}

	w := setupWallet()
	node := full_node.NewFullNode(cfg, w.Address)
	if *chainPath != "" {
		if err := node.LoadChain(*chainPath); err != nil {
			log.Fatalln("failed to load chain snapshot:", err)
		}
		fmt.Println("Chain loaded, height", node.Height())
	}

	cmd := make(chan commands.Command)
	g := ListenOnInput(cmd, *debugMode)
	layout.Log(g, "node %s ready, difficulty %d", node.ID(), cfg.DIFFICULTY)
	HandleCommand(cmd, node, w, g)
}
