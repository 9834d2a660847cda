package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/genesis"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/deadsgold/powledger/foundation/blockchain/storage/disk"
	"github.com/deadsgold/powledger/foundation/blockchain/storage/memory"
	"github.com/deadsgold/powledger/foundation/blockchain/validator"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	senderKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	minerKey    = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	sender      = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	recipient   = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	genesisTime = 1700000000000
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:               time.UnixMilli(genesisTime),
		ChainID:            1,
		Difficulty:         1,
		AdjustmentInterval: 10,
		TargetBlockTime:    10,
		MiningReward:       decimal.NewFromInt(1),
	}
}

func beneficiary(t *testing.T) database.AccountID {
	pk, err := crypto.HexToECDSA(minerKey)
	ifErrFailNow(t, err)

	return database.PublicKeyToAccountID(pk.PublicKey)
}

func newLedger(t *testing.T, cfg ledger.Config) *ledger.Ledger {
	if cfg.Genesis.ChainID == 0 {
		cfg.Genesis = testGenesis()
	}

	l, err := ledger.New(cfg)
	ifErrFailNow(t, err)

	return l
}

func signedTransfer(t *testing.T, amount int64) database.Tx {
	pk, err := crypto.HexToECDSA(senderKey)
	ifErrFailNow(t, err)

	tx, err := database.NewTransfer(sender, recipient, decimal.NewFromInt(amount))
	ifErrFailNow(t, err)

	signed, err := tx.Sign(signature.NewSecp256k1(pk))
	ifErrFailNow(t, err)

	return signed
}

// solve finds a nonce for the work the same way the engine does.
func solve(t *testing.T, work ledger.Work) uint64 {
	res := pow.New().Run(context.Background(), work.Candidate.Challenge(), work.Difficulty)
	if res.Status != pow.Found {
		t.Fatalf("Should be able to solve the work: %s", res.Status)
	}
	return res.Nonce
}

type countingWorker struct {
	start  atomic.Int32
	cancel atomic.Int32
}

func (w *countingWorker) Shutdown()           {}
func (w *countingWorker) SignalStartMining()  { w.start.Add(1) }
func (w *countingWorker) SignalCancelMining() { w.cancel.Add(1) }

// failingStorage keeps blocks in memory but fails every write of the block
// at failIndex.
type failingStorage struct {
	*memory.Memory
	failIndex uint64
}

func (fs *failingStorage) Write(blockData database.BlockData) error {
	if blockData.Index == fs.failIndex {
		return errors.New("disk full")
	}
	return fs.Memory.Write(blockData)
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a fresh ledger.")
	{
		l := newLedger(t, ledger.Config{})

		if l.Length() != 1 {
			t.Fatalf("\t%s\tShould have one block, got %d.", failed, l.Length())
		}

		g := l.LatestBlock()
		if g.Index() != 0 || g.PrevHash() != "0" || len(g.Transactions()) != 0 || g.Nonce() != 0 {
			t.Fatalf("\t%s\tShould get a genesis block: %+v", failed, g.Data())
		}
		t.Logf("\t%s\tShould get a genesis block.", success)

		if g.Timestamp() != genesisTime {
			t.Fatalf("\t%s\tShould use the fixed genesis time, got %d.", failed, g.Timestamp())
		}
		t.Logf("\t%s\tShould use the fixed genesis time.", success)

		clock := time.UnixMilli(1800000000000)
		unfixed := newLedger(t, ledger.Config{Genesis: genesis.Default(), Now: func() time.Time { return clock }})
		if unfixed.LatestBlock().Timestamp() != clock.UnixMilli() {
			t.Fatalf("\t%s\tShould use the creation time when the genesis time isn't fixed.", failed)
		}
		t.Logf("\t%s\tShould use the creation time when the genesis time isn't fixed.", success)

		if unfixed.Difficulty() != genesis.DefaultDifficulty {
			t.Fatalf("\t%s\tShould start at the default difficulty, got %d.", failed, unfixed.Difficulty())
		}
		t.Logf("\t%s\tShould start at the default difficulty.", success)
	}
}

func Test_AdmitCommit(t *testing.T) {
	t.Log("Given the need to admit and commit a transfer.")
	{
		l := newLedger(t, ledger.Config{})

		ifErrFailNow(t, l.Admit(signedTransfer(t, 10)))
		if l.PendingCount() != 1 {
			t.Fatalf("\t%s\tShould have one pending transaction, got %d.", failed, l.PendingCount())
		}
		t.Logf("\t%s\tShould have one pending transaction.", success)

		block, err := l.Commit(12345)
		ifErrFailNow(t, err)

		if l.PendingCount() != 0 || l.Length() != 2 {
			t.Fatalf("\t%s\tShould drain the pool into a second block, pending %d, length %d.", failed, l.PendingCount(), l.Length())
		}
		t.Logf("\t%s\tShould drain the pool into a second block.", success)

		if block.Index() != 1 || block.Nonce() != 12345 || block.PrevHash() != l.Blocks(0, 0)[0].Hash() {
			t.Fatalf("\t%s\tShould link the block to genesis: %+v", failed, block.Data())
		}
		t.Logf("\t%s\tShould link the block to genesis.", success)

		if !l.BalanceOf(recipient).Equal(decimal.NewFromInt(10)) {
			t.Fatalf("\t%s\tShould credit the recipient, got %s.", failed, l.BalanceOf(recipient))
		}
		if !l.BalanceOf(sender).Equal(decimal.NewFromInt(-10)) {
			t.Fatalf("\t%s\tShould debit the sender, got %s.", failed, l.BalanceOf(sender))
		}
		t.Logf("\t%s\tShould move the amount between the accounts.", success)

		if err := l.VerifyChain(); err != nil {
			t.Fatalf("\t%s\tShould have a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)
	}
}

func Test_AdmitRejections(t *testing.T) {
	t.Log("Given the need to reject bad transactions.")
	{
		var policyCalls atomic.Int32
		policy := validator.Func(func(tx database.Tx) bool {
			policyCalls.Add(1)
			return tx.Amount.LessThan(decimal.NewFromInt(100))
		})

		w := countingWorker{}
		l := newLedger(t, ledger.Config{Policy: policy})
		l.Worker = &w

		good := signedTransfer(t, 10)

		for _, i := range []int{0, 20, 40, 64} {
			bad := good
			bad.Signature = make([]byte, len(good.Signature))
			copy(bad.Signature, good.Signature)
			bad.Signature[i] ^= 0x01

			err := l.Admit(bad)
			if !errors.Is(err, ledger.ErrInvalidSignature) || !ledger.IsRejectError(err) {
				t.Fatalf("\t%s\tShould reject a flipped byte %d: %v", failed, i, err)
			}
		}
		t.Logf("\t%s\tShould reject a flipped signature byte.", success)

		tampered := good
		tampered.Amount = decimal.NewFromInt(11)
		if err := l.Admit(tampered); !errors.Is(err, ledger.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a tampered amount: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a tampered amount.", success)

		if policyCalls.Load() != 0 {
			t.Fatalf("\t%s\tShould not consult the policy for a bad signature.", failed)
		}
		t.Logf("\t%s\tShould not consult the policy for a bad signature.", success)

		if err := l.Admit(signedTransfer(t, 500)); !errors.Is(err, ledger.ErrRejectedByPolicy) {
			t.Fatalf("\t%s\tShould reject by policy: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject by policy.", success)

		if l.PendingCount() != 0 || w.start.Load() != 0 {
			t.Fatalf("\t%s\tShould leave the pool untouched.", failed)
		}
		t.Logf("\t%s\tShould leave the pool untouched.", success)

		reward, _ := database.NewReward(recipient, decimal.NewFromInt(1))
		ifErrFailNow(t, l.Admit(reward))
		ifErrFailNow(t, l.Admit(good))

		if l.PendingCount() != 2 || w.start.Load() != 2 {
			t.Fatalf("\t%s\tShould admit and signal mining, pending %d.", failed, l.PendingCount())
		}
		t.Logf("\t%s\tShould admit rewards and valid transfers and signal mining.", success)

		if policyCalls.Load() != 2 {
			t.Fatalf("\t%s\tShould not consult the policy for rewards, calls %d.", failed, policyCalls.Load())
		}
		t.Logf("\t%s\tShould not consult the policy for rewards.", success)
	}
}

func Test_CanonicalAccounts(t *testing.T) {
	t.Log("Given the need to keep one balance per key.")
	{
		l := newLedger(t, ledger.Config{})

		pk, err := crypto.HexToECDSA(senderKey)
		ifErrFailNow(t, err)
		signer := signature.NewSecp256k1(pk)

		reward, err := database.NewReward(sender, decimal.NewFromInt(100))
		ifErrFailNow(t, err)
		ifErrFailNow(t, l.Admit(reward))
		_, err = l.Commit(1)
		ifErrFailNow(t, err)

		lower := database.AccountID(strings.ToLower(string(sender)))

		tx, err := database.NewTransfer(lower, recipient, decimal.NewFromInt(40))
		ifErrFailNow(t, err)

		signed, err := tx.Sign(signer)
		ifErrFailNow(t, err)
		ifErrFailNow(t, l.Admit(signed))
		_, err = l.Commit(2)
		ifErrFailNow(t, err)

		if !l.BalanceOf(sender).Equal(decimal.NewFromInt(60)) {
			t.Fatalf("\t%s\tShould debit the checksummed sender, got %s.", failed, l.BalanceOf(sender))
		}
		t.Logf("\t%s\tShould debit the checksummed sender.", success)

		if _, exists := l.Balances()[lower]; exists || !l.BalanceOf(lower).IsZero() {
			t.Fatalf("\t%s\tShould not open a balance for the lower case spelling.", failed)
		}
		t.Logf("\t%s\tShould not open a balance for the lower case spelling.", success)

		forged := database.Tx{Kind: database.Transfer, From: lower, To: recipient, Amount: decimal.NewFromInt(40)}
		forged.Signature, err = signer.Sign(database.EncodeForSigning(forged))
		ifErrFailNow(t, err)

		if err := l.Admit(forged); !errors.Is(err, database.ErrInvalidAccount) || !ledger.IsRejectError(err) {
			t.Fatalf("\t%s\tShould reject a non canonical sender: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a non canonical sender.", success)

		swapped := database.Tx{Kind: database.Transfer, From: sender, To: "alice\xff", Amount: decimal.NewFromInt(1)}
		swapped.Signature, err = signer.Sign(database.EncodeForSigning(swapped))
		ifErrFailNow(t, err)
		swapped.To = "alice\xfe"

		if err := l.Admit(swapped); !errors.Is(err, database.ErrInvalidAccount) || !ledger.IsRejectError(err) {
			t.Fatalf("\t%s\tShould reject a recipient that isn't an account: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a recipient that isn't an account.", success)

		if l.PendingCount() != 0 {
			t.Fatalf("\t%s\tShould leave the pool untouched, got %d.", failed, l.PendingCount())
		}
		t.Logf("\t%s\tShould leave the pool untouched.", success)
	}
}

func Test_Mine(t *testing.T) {
	t.Log("Given the need to mine blocks.")
	{
		miner := beneficiary(t)
		l := newLedger(t, ledger.Config{Beneficiary: miner, Engine: pow.New(pow.WithWorkers(4), pow.WithChunkSize(64))})

		ifErrFailNow(t, l.Admit(signedTransfer(t, 3)))

		for i := 0; i < 3; i++ {
			res, err := l.Mine(context.Background())
			ifErrFailNow(t, err)

			if res.Status != pow.Found {
				t.Fatalf("\t%s\tShould find a proof, got %s.", failed, res.Status)
			}

			if !l.VerifyProof(res.Block, 1) || res.Block.Hash()[0] != '0' {
				t.Fatalf("\t%s\tShould mine a block that verifies: %s", failed, res.Block.Hash())
			}
		}
		t.Logf("\t%s\tShould mine blocks that verify.", success)

		if l.Length() != 4 || l.PendingCount() != 0 {
			t.Fatalf("\t%s\tShould append the mined blocks, length %d.", failed, l.Length())
		}

		if !l.BalanceOf(miner).Equal(decimal.NewFromInt(3)) {
			t.Fatalf("\t%s\tShould reward the beneficiary, got %s.", failed, l.BalanceOf(miner))
		}
		t.Logf("\t%s\tShould reward the beneficiary.", success)

		total := decimal.Zero
		for _, balance := range l.Balances() {
			total = total.Add(balance)
		}
		if !total.Equal(l.Issued()) || !total.Equal(decimal.NewFromInt(3)) {
			t.Fatalf("\t%s\tShould conserve value, total %s, issued %s.", failed, total, l.Issued())
		}
		t.Logf("\t%s\tShould conserve value.", success)

		if err := l.VerifyChain(); err != nil {
			t.Fatalf("\t%s\tShould have a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		if _, err := newLedger(t, ledger.Config{}).Mine(context.Background()); !errors.Is(err, ledger.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould not mine an empty block without a reward: %v", failed, err)
		}
		t.Logf("\t%s\tShould not mine an empty block without a reward.", success)
	}
}

func Test_MineInterrupted(t *testing.T) {
	t.Log("Given the need to stop a search that can't finish.")
	{
		gen := testGenesis()
		gen.Difficulty = 64

		l := newLedger(t, ledger.Config{Genesis: gen, Beneficiary: beneficiary(t)})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		res, err := l.Mine(ctx)
		ifErrFailNow(t, err)

		if res.Status != pow.Interrupted || l.Length() != 1 {
			t.Fatalf("\t%s\tShould be interrupted without a new block, got %s.", failed, res.Status)
		}
		t.Logf("\t%s\tShould be interrupted without a new block.", success)

		if l.MiningState() != pow.Interrupted {
			t.Fatalf("\t%s\tShould report the interrupted state, got %s.", failed, l.MiningState())
		}
		t.Logf("\t%s\tShould report the interrupted state.", success)
	}
}

func Test_SnapshotIsolation(t *testing.T) {
	t.Log("Given the need to keep transactions admitted during a search.")
	{
		l := newLedger(t, ledger.Config{})

		ifErrFailNow(t, l.Admit(signedTransfer(t, 1)))

		work, err := l.Prepare()
		ifErrFailNow(t, err)

		ifErrFailNow(t, l.Admit(signedTransfer(t, 2)))

		block, err := l.CommitProof(work, solve(t, work))
		ifErrFailNow(t, err)

		if len(block.Transactions()) != 1 || l.PendingCount() != 1 {
			t.Fatalf("\t%s\tShould only commit the snapshot, block txs %d, pending %d.", failed, len(block.Transactions()), l.PendingCount())
		}
		t.Logf("\t%s\tShould only commit the snapshot.", success)

		if !l.Pending()[0].Amount.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("\t%s\tShould leave the late transaction pending.", failed)
		}
		t.Logf("\t%s\tShould leave the late transaction pending.", success)
	}
}

func Test_CommitProofFailures(t *testing.T) {
	t.Log("Given the need to reject proofs that don't fit the chain.")
	{
		l := newLedger(t, ledger.Config{})
		ifErrFailNow(t, l.Admit(signedTransfer(t, 1)))

		work, err := l.Prepare()
		ifErrFailNow(t, err)

		var bad uint64
		for ; work.Candidate.Seal(bad).IsSolved(work.Difficulty); bad++ {
		}

		if _, err := l.CommitProof(work, bad); !errors.Is(err, ledger.ErrInvalidProof) {
			t.Fatalf("\t%s\tShould reject a nonce that doesn't solve the block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a nonce that doesn't solve the block.", success)

		if l.PendingCount() != 1 || l.Length() != 1 {
			t.Fatalf("\t%s\tShould leave the ledger untouched.", failed)
		}

		w := countingWorker{}
		l.Worker = &w

		_, err = l.Commit(0)
		ifErrFailNow(t, err)

		if w.cancel.Load() != 1 {
			t.Fatalf("\t%s\tShould cancel mining on a manual commit.", failed)
		}
		t.Logf("\t%s\tShould cancel mining on a manual commit.", success)

		if _, err := l.CommitProof(work, solve(t, work)); !errors.Is(err, ledger.ErrStaleProof) {
			t.Fatalf("\t%s\tShould reject a proof for a stale tail: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a proof for a stale tail.", success)
	}
}

func Test_DifficultyAdjustment(t *testing.T) {
	t.Log("Given the need to recalibrate difficulty every interval.")
	{
		gen := testGenesis()
		gen.Difficulty = 4

		l := newLedger(t, ledger.Config{Genesis: gen})

		// Ten blocks one second apart against a ten second target.
		for i := 1; i <= 10; i++ {
			if l.Difficulty() != 4 {
				t.Fatalf("\t%s\tShould not adjust before the checkpoint, block %d, got %d.", failed, i, l.Difficulty())
			}

			_, err := l.Commit(0, ledger.WithTimestamp(genesisTime+int64(i)*1000))
			ifErrFailNow(t, err)
		}

		if l.Difficulty() != 6 {
			t.Fatalf("\t%s\tShould raise the difficulty by 2, got %d.", failed, l.Difficulty())
		}
		t.Logf("\t%s\tShould raise the difficulty by 2.", success)

		// Ten blocks a minute apart.
		for i := 11; i <= 20; i++ {
			_, err := l.Commit(0, ledger.WithTimestamp(genesisTime+10_000+int64(i-10)*60_000))
			ifErrFailNow(t, err)
		}

		if l.Difficulty() != 4 {
			t.Fatalf("\t%s\tShould lower the difficulty by 2, got %d.", failed, l.Difficulty())
		}
		t.Logf("\t%s\tShould lower the difficulty by 2.", success)
	}
}

func Test_ChainIntegrity(t *testing.T) {
	t.Log("Given the need to detect a broken chain.")
	{
		l := newLedger(t, ledger.Config{})

		_, err := l.Commit(0, ledger.WithPreviousHash("deadbeef"))
		ifErrFailNow(t, err)

		err = l.VerifyChain()
		if !database.IsChainIntegrityError(err) {
			t.Fatalf("\t%s\tShould report a chain integrity error: %v", failed, err)
		}
		t.Logf("\t%s\tShould report a chain integrity error.", success)
	}
}

func Test_ExportImport(t *testing.T) {
	t.Log("Given the need to move the full ledger state.")
	{
		src := newLedger(t, ledger.Config{Beneficiary: beneficiary(t)})

		ifErrFailNow(t, src.Admit(signedTransfer(t, 5)))
		_, err := src.Mine(context.Background())
		ifErrFailNow(t, err)
		ifErrFailNow(t, src.Admit(signedTransfer(t, 7)))

		data, err := json.Marshal(src.Export())
		ifErrFailNow(t, err)

		var snap ledger.Snapshot
		ifErrFailNow(t, json.Unmarshal(data, &snap))

		dst := newLedger(t, ledger.Config{})
		ifErrFailNow(t, dst.Import(snap))

		if dst.Length() != src.Length() || dst.PendingCount() != 1 || dst.LatestBlock().Hash() != src.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould restore the chain and the pool.", failed)
		}
		t.Logf("\t%s\tShould restore the chain and the pool.", success)

		again, err := json.Marshal(dst.Export())
		ifErrFailNow(t, err)

		if string(again) != string(data) {
			t.Fatalf("\t%s\tShould export the same bytes after an import.", failed)
		}
		t.Logf("\t%s\tShould export the same bytes after an import.", success)

		snap.Chain[1].Nonce++
		if err := dst.Import(snap); !database.IsChainIntegrityError(err) {
			t.Fatalf("\t%s\tShould reject a tampered snapshot: %v", failed, err)
		}
		snap.Chain[1].Nonce--

		snap.Pending[0].Amount = decimal.NewFromInt(70)
		if err := dst.Import(snap); !errors.Is(err, ledger.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a tampered pending transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a tampered snapshot.", success)

		if dst.LatestBlock().Hash() != src.LatestBlock().Hash() || dst.PendingCount() != 1 {
			t.Fatalf("\t%s\tShould keep the state after a rejected import.", failed)
		}
		t.Logf("\t%s\tShould keep the state after a rejected import.", success)
	}
}

func Test_ImportStorageFailure(t *testing.T) {
	t.Log("Given the need to keep storage whole when an import can't be written.")
	{
		src := newLedger(t, ledger.Config{})
		for i := 1; i <= 2; i++ {
			ifErrFailNow(t, src.Admit(signedTransfer(t, int64(i))))
			_, err := src.Commit(uint64(i))
			ifErrFailNow(t, err)
		}

		mem, err := memory.New()
		ifErrFailNow(t, err)
		strg := failingStorage{Memory: mem, failIndex: 2}

		dst := newLedger(t, ledger.Config{Storage: &strg})
		ifErrFailNow(t, dst.Admit(signedTransfer(t, 9)))
		_, err = dst.Commit(9)
		ifErrFailNow(t, err)
		tail := dst.LatestBlock().Hash()

		if err := dst.Import(src.Export()); err == nil {
			t.Fatalf("\t%s\tShould fail the import when a write fails.", failed)
		}
		t.Logf("\t%s\tShould fail the import when a write fails.", success)

		if dst.Length() != 2 || dst.LatestBlock().Hash() != tail {
			t.Fatalf("\t%s\tShould keep the chain in memory.", failed)
		}
		t.Logf("\t%s\tShould keep the chain in memory.", success)

		for i, block := range dst.Blocks(0, 1) {
			stored, err := mem.GetBlock(uint64(i))
			if err != nil || stored.Hash != block.Hash() {
				t.Fatalf("\t%s\tShould restore block %d to storage: %v", failed, i, err)
			}
		}
		if _, err := mem.GetBlock(2); err == nil {
			t.Fatalf("\t%s\tShould not leave imported blocks in storage.", failed)
		}
		t.Logf("\t%s\tShould restore the previous blocks to storage.", success)

		reloaded := newLedger(t, ledger.Config{Storage: &strg})
		if reloaded.Length() != 2 || reloaded.LatestBlock().Hash() != tail {
			t.Fatalf("\t%s\tShould reload the previous chain, got %d blocks.", failed, reloaded.Length())
		}
		t.Logf("\t%s\tShould reload the previous chain.", success)
	}
}

func Test_DiskReload(t *testing.T) {
	t.Log("Given the need to reload the chain from disk.")
	{
		dir := t.TempDir()

		strg, err := disk.New(dir)
		ifErrFailNow(t, err)

		gen := testGenesis()
		gen.Difficulty = 4

		l := newLedger(t, ledger.Config{Genesis: gen, Storage: strg})

		ifErrFailNow(t, l.Admit(signedTransfer(t, 10)))
		for i := 1; i <= 10; i++ {
			_, err := l.Commit(uint64(i), ledger.WithTimestamp(genesisTime+int64(i)*1000))
			ifErrFailNow(t, err)
		}
		ifErrFailNow(t, l.Shutdown())

		strg, err = disk.New(dir)
		ifErrFailNow(t, err)

		reloaded := newLedger(t, ledger.Config{Genesis: gen, Storage: strg})

		if reloaded.Length() != 11 || reloaded.LatestBlock().Hash() != l.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould reload every block, got %d.", failed, reloaded.Length())
		}
		t.Logf("\t%s\tShould reload every block.", success)

		if reloaded.Difficulty() != l.Difficulty() || reloaded.Difficulty() != 6 {
			t.Fatalf("\t%s\tShould replay the difficulty, got %d.", failed, reloaded.Difficulty())
		}
		t.Logf("\t%s\tShould replay the difficulty.", success)

		if !reloaded.BalanceOf(recipient).Equal(decimal.NewFromInt(10)) {
			t.Fatalf("\t%s\tShould reload the balances.", failed)
		}
		t.Logf("\t%s\tShould reload the balances.", success)
	}
}
