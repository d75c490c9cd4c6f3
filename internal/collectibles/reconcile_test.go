package collectibles_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collectibles/internal/collectibles"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/mocks"
)

// stubMaterializer copies record fields into collectibles without any I/O
type stubMaterializer struct {
	calls atomic.Int32
}

func (s *stubMaterializer) AssetToCollectible(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error) {
	s.calls.Add(1)
	c := fromAsset(asset)
	c.IsOwned = true
	return c, nil
}

func (s *stubMaterializer) CreationEventToCollectible(ctx context.Context, event domain.RawEvent) (*domain.Collectible, error) {
	s.calls.Add(1)
	c := fromAsset(event.Asset)
	c.Wallet = event.Wallet
	ts := event.Timestamp
	c.DateCreated = &ts
	return c, nil
}

func (s *stubMaterializer) TransferEventToCollectible(ctx context.Context, event domain.RawEvent, owned bool) (*domain.Collectible, error) {
	s.calls.Add(1)
	c := fromAsset(event.Asset)
	c.Wallet = event.Wallet
	if owned {
		c.Wallet = event.ToAddress
	}
	c.IsOwned = owned
	c.SetDateLastTransferred(event.Timestamp)
	return c, nil
}

func fromAsset(asset domain.RawAsset) *domain.Collectible {
	return &domain.Collectible{
		ID:              asset.Identity(),
		TokenID:         asset.TokenID,
		ContractAddress: asset.ContractAddress,
		Chain:           asset.Chain,
		Name:            asset.Name,
		ImageURL:        asset.ImageURL,
		Wallet:          asset.Wallet,
	}
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ownedAsset(tokenID, contract, wallet string) domain.RawAsset {
	a := validAsset(tokenID, contract)
	a.Wallet = wallet
	return a
}

func transferEvent(tokenID, contract, from, to, wallet, day string) domain.RawEvent {
	asset := validAsset(tokenID, contract)
	asset.Name = "event " + tokenID
	asset.Wallet = wallet
	return domain.RawEvent{
		Kind:        domain.EventKindTransfer,
		Asset:       asset,
		FromAddress: from,
		ToAddress:   to,
		Timestamp:   date(day),
		Wallet:      wallet,
	}
}

func creationEvent(tokenID, contract, wallet, day string) domain.RawEvent {
	asset := validAsset(tokenID, contract)
	asset.Name = "creation " + tokenID
	asset.Wallet = wallet
	return domain.RawEvent{
		Kind:      domain.EventKindCreation,
		Asset:     asset,
		Timestamp: date(day),
		Wallet:    wallet,
	}
}

func newReconciler(m collectibles.Materializer) *collectibles.Reconciler {
	return collectibles.NewReconciler(collectibles.NewFilter(nil), m, 4)
}

func identities(cs []*domain.Collectible) []domain.Identity {
	ids := make([]domain.Identity, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestReconcile_OwnedAssetWithNullTransfer(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		nil,
		[]domain.RawEvent{transferEvent("1", contractA, domain.ETHEREUM_ZERO_ADDRESS, walletW1, walletW1, "2021-01-01")},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state, 1)
	require.Len(t, state[walletW1], 1)

	c := state[walletW1][0]
	assert.Equal(t, domain.KeyOf("1", contractA), c.ID)
	assert.Equal(t, "1:::"+contractA, c.ID.String())
	require.NotNil(t, c.DateLastTransferred)
	assert.Equal(t, date("2021-01-01"), *c.DateLastTransferred)
	// fields from the owned asset are preserved
	assert.Equal(t, "token 1", c.Name)
	assert.True(t, c.IsOwned)
}

func TestReconcile_CreationOnlyIsGroupedUnderQueryWallet(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		nil,
		[]domain.RawEvent{creationEvent("2", contractB, walletW1, "2020-05-01")},
		nil,
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	c := state[walletW1][0]
	assert.Equal(t, domain.KeyOf("2", contractB), c.ID)
	require.NotNil(t, c.DateCreated)
	assert.Equal(t, date("2020-05-01"), *c.DateCreated)
	assert.Nil(t, c.DateLastTransferred)
}

func TestReconcile_UnstampedCollectibleIsDropped(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		nil,
		[]domain.RawEvent{creationEvent("2", contractB, "", "2020-05-01")},
		nil,
		[]string{walletW1},
	)

	require.NoError(t, err)
	assert.Empty(t, state)
	_, ok := state[""]
	assert.False(t, ok)
}

func TestReconcile_NullTransferForUnknownIdentity(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		nil,
		[]domain.RawEvent{creationEvent("5", contractA, walletW1, "2019-01-01")},
		[]domain.RawEvent{
			transferEvent("5", contractA, domain.ETHEREUM_ZERO_ADDRESS, thirdPart, walletW1, "2020-01-01"),
			transferEvent("5", contractA, domain.ETHEREUM_ZERO_ADDRESS, thirdPart, walletW1, "2020-03-01"),
			transferEvent("5", contractA, domain.ETHEREUM_ZERO_ADDRESS, thirdPart, walletW1, "2020-02-01"),
		},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	c := state[walletW1][0]
	assert.False(t, c.IsOwned)
	// the mint wins over the explicit creation event
	assert.Equal(t, "event 5", c.Name)
	assert.Nil(t, c.DateCreated)
	require.NotNil(t, c.DateLastTransferred)
	assert.Equal(t, date("2020-03-01"), *c.DateLastTransferred)
}

func TestReconcile_NewestTransferWins(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		nil,
		[]domain.RawEvent{
			transferEvent("1", contractA, thirdPart, walletW1, walletW1, "2021-06-01"),
			transferEvent("1", contractA, walletW2, thirdPart, walletW1, "2022-01-01"),
			transferEvent("1", contractA, thirdPart, walletW2, walletW1, "2021-01-01"),
		},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	require.NotNil(t, state[walletW1][0].DateLastTransferred)
	assert.Equal(t, date("2022-01-01"), *state[walletW1][0].DateLastTransferred)
}

func TestReconcile_OlderTransferDoesNotReplaceNewerMint(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	// burned and minted again after an earlier ordinary transfer
	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		nil,
		[]domain.RawEvent{
			transferEvent("1", contractA, domain.ETHEREUM_ZERO_ADDRESS, walletW1, walletW1, "2023-01-01"),
			transferEvent("1", contractA, walletW2, walletW1, walletW1, "2021-01-01"),
		},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	c := state[walletW1][0]
	require.NotNil(t, c.DateLastTransferred)
	assert.Equal(t, date("2023-01-01"), *c.DateLastTransferred)
	assert.Equal(t, "token 1", c.Name)
}

func TestReconcile_NewerTransferReplacesOlderMint(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		nil,
		[]domain.RawEvent{
			transferEvent("1", contractA, domain.ETHEREUM_ZERO_ADDRESS, walletW2, walletW1, "2020-01-01"),
			transferEvent("1", contractA, walletW2, walletW1, walletW1, "2021-01-01"),
		},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.NotNil(t, state[walletW1][0].DateLastTransferred)
	assert.Equal(t, date("2021-01-01"), *state[walletW1][0].DateLastTransferred)
}

func TestReconcile_EmptySenderIsOrdinaryTransfer(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(),
		nil,
		nil,
		[]domain.RawEvent{
			transferEvent("1", contractA, "", walletW1, walletW1, "2021-01-01"),
			transferEvent("2", contractA, "", thirdPart, walletW1, "2021-01-01"),
		},
		[]string{walletW1},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	c := state[walletW1][0]
	assert.Equal(t, domain.KeyOf("1", contractA), c.ID)
	assert.True(t, c.IsOwned)
}

func TestReconcile_EqualTimestampsKeepFirstSeen(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	first := transferEvent("7", contractA, thirdPart, walletW1, walletW1, "2021-06-01")
	first.TxHash = "0xfirst"
	first.Asset.Name = "first"
	second := transferEvent("7", contractA, thirdPart, walletW2, walletW2, "2021-06-01")
	second.Asset.Name = "second"

	state, err := r.Reconcile(context.Background(), nil, nil, []domain.RawEvent{first, second}, []string{walletW1, walletW2})

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	assert.Empty(t, state[walletW2])
	assert.Equal(t, "first", state[walletW1][0].Name)
}

func TestReconcile_ThirdPartyTransferExcluded(t *testing.T) {
	m := &stubMaterializer{}
	r := newReconciler(m)

	state, err := r.Reconcile(context.Background(),
		nil,
		nil,
		[]domain.RawEvent{transferEvent("9", contractA, walletW1, thirdPart, walletW1, "2021-01-01")},
		[]string{walletW1},
	)

	require.NoError(t, err)
	assert.Empty(t, state)
	assert.Equal(t, int32(0), m.calls.Load())
}

func TestReconcile_ReceivedTransferIsOwned(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	// the wallet is given in lower case while the event carries a checksummed address
	lower := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"
	to := domain.NormalizeAddress(lower)

	state, err := r.Reconcile(context.Background(),
		nil,
		nil,
		[]domain.RawEvent{transferEvent("3", contractA, thirdPart, to, lower, "2021-01-01")},
		[]string{lower},
	)

	require.NoError(t, err)
	require.Len(t, state[to], 1)
	c := state[to][0]
	assert.True(t, c.IsOwned)
	assert.Equal(t, domain.KeyOf("3", contractA), c.ID)
	require.NotNil(t, c.DateLastTransferred)
	assert.Equal(t, date("2021-01-01"), *c.DateLastTransferred)
}

func TestReconcile_CreationDoesNotOverrideOwnedAsset(t *testing.T) {
	m := &stubMaterializer{}
	r := newReconciler(m)

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		[]domain.RawEvent{creationEvent("1", contractA, walletW2, "2020-01-01")},
		nil,
		[]string{walletW1, walletW2},
	)

	require.NoError(t, err)
	require.Len(t, state[walletW1], 1)
	assert.Empty(t, state[walletW2])
	c := state[walletW1][0]
	assert.Equal(t, "token 1", c.Name)
	assert.Nil(t, c.DateCreated)
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestReconcile_DuplicateCreationEventsMaterializeOnce(t *testing.T) {
	m := &stubMaterializer{}
	r := newReconciler(m)

	state, err := r.Reconcile(context.Background(),
		nil,
		[]domain.RawEvent{
			creationEvent("4", contractA, walletW1, "2020-01-01"),
			creationEvent("4", contractA, walletW2, "2020-01-01"),
		},
		nil,
		[]string{walletW1, walletW2},
	)

	require.NoError(t, err)
	assert.Len(t, state[walletW1], 1)
	assert.Empty(t, state[walletW2])
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestReconcile_DuplicateOwnedAssetsKeepFirstPosition(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	first := ownedAsset("1", contractA, walletW1)
	other := ownedAsset("2", contractA, walletW1)
	again := ownedAsset("1", contractA, walletW1)
	again.Name = "renamed"

	state, err := r.Reconcile(context.Background(), []domain.RawAsset{first, other, again}, nil, nil, []string{walletW1})

	require.NoError(t, err)
	require.Len(t, state[walletW1], 2)
	assert.Equal(t, []domain.Identity{domain.KeyOf("1", contractA), domain.KeyOf("2", contractA)}, identities(state[walletW1]))
	assert.Equal(t, "renamed", state[walletW1][0].Name)
}

func TestReconcile_InvalidRecordsAreFiltered(t *testing.T) {
	m := &stubMaterializer{}
	r := newReconciler(m)

	spam := ownedAsset("1", contractA, walletW1)
	spam.Spam = true
	noToken := ownedAsset("", contractA, walletW1)
	badEvent := transferEvent("x", contractA, thirdPart, walletW1, walletW1, "2021-01-01")

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{spam, noToken},
		[]domain.RawEvent{creationEvent("", contractA, walletW1, "2020-01-01")},
		[]domain.RawEvent{badEvent},
		[]string{walletW1},
	)

	require.NoError(t, err)
	assert.Empty(t, state)
	assert.Equal(t, int32(0), m.calls.Load())
}

func TestReconcile_ResolutionOrderAndGroupingCompleteness(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	assets := []domain.RawAsset{
		ownedAsset("1", contractA, walletW1),
		ownedAsset("2", contractA, walletW2),
	}
	creations := []domain.RawEvent{
		creationEvent("3", contractA, walletW2, "2020-01-01"),
		creationEvent("1", contractA, walletW2, "2020-01-01"),
	}
	transfers := []domain.RawEvent{
		transferEvent("4", contractB, domain.ETHEREUM_ZERO_ADDRESS, walletW1, walletW1, "2020-02-01"),
		transferEvent("5", contractB, thirdPart, walletW1, walletW1, "2020-03-01"),
		transferEvent("6", contractB, walletW1, thirdPart, walletW1, "2020-04-01"),
		transferEvent("2", contractA, walletW1, walletW2, walletW2, "2020-05-01"),
	}
	wallets := []string{walletW1, walletW2}

	state, err := r.Reconcile(context.Background(), assets, creations, transfers, wallets)
	require.NoError(t, err)

	// owned assets first, then mints, creations and received transfers
	assert.Equal(t, []domain.Identity{
		domain.KeyOf("1", contractA),
		domain.KeyOf("4", contractB),
		domain.KeyOf("5", contractB),
	}, identities(state[walletW1]))
	assert.Equal(t, []domain.Identity{
		domain.KeyOf("2", contractA),
		domain.KeyOf("3", contractA),
	}, identities(state[walletW2]))
	assert.Equal(t, 5, state.Count())

	seen := make(map[domain.Identity]int)
	for wallet, cs := range state {
		for _, c := range cs {
			assert.True(t, c.ID.Valid())
			assert.Equal(t, wallet, c.Wallet)
			seen[c.ID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "identity %s appears in more than one list", id)
	}

	// the known asset took the later transfer date
	require.NotNil(t, state[walletW2][0].DateLastTransferred)
	assert.Equal(t, date("2020-05-01"), *state[walletW2][0].DateLastTransferred)
}

func TestReconcile_Idempotent(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	assets := []domain.RawAsset{ownedAsset("1", contractA, walletW1), ownedAsset("2", contractB, walletW2)}
	creations := []domain.RawEvent{creationEvent("3", contractA, walletW1, "2020-01-01")}
	transfers := []domain.RawEvent{
		transferEvent("1", contractA, domain.ETHEREUM_ZERO_ADDRESS, walletW1, walletW1, "2019-01-01"),
		transferEvent("8", contractB, thirdPart, walletW2, walletW2, "2021-01-01"),
	}
	wallets := []string{walletW1, walletW2}

	first, err := r.Reconcile(context.Background(), assets, creations, transfers, wallets)
	require.NoError(t, err)

	for range 5 {
		again, err := r.Reconcile(context.Background(), assets, creations, transfers, wallets)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReconcile_MaterializerErrorFailsWholeCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	materializer := mocks.NewMockMaterializer(ctrl)
	materializer.
		EXPECT().
		AssetToCollectible(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error) {
			return fromAsset(asset), nil
		}).
		AnyTimes()
	materializer.
		EXPECT().
		CreationEventToCollectible(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("metadata unavailable"))

	r := newReconciler(materializer)

	state, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{ownedAsset("1", contractA, walletW1)},
		[]domain.RawEvent{creationEvent("2", contractA, walletW1, "2020-01-01")},
		nil,
		[]string{walletW1},
	)

	assert.Nil(t, state)
	assert.ErrorIs(t, err, domain.ErrMaterialization)
	assert.Contains(t, err.Error(), "metadata unavailable")
}

func TestReconcile_FirstFailingRecordIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	materializer := mocks.NewMockMaterializer(ctrl)
	materializer.
		EXPECT().
		AssetToCollectible(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error) {
			switch asset.TokenID {
			case "2":
				// fail late so the second failure settles first
				time.Sleep(20 * time.Millisecond)
				return nil, errors.New("token 2 failed")
			case "3":
				return nil, errors.New("token 3 failed")
			}
			return fromAsset(asset), nil
		}).
		Times(3)

	r := newReconciler(materializer)

	_, err := r.Reconcile(context.Background(),
		[]domain.RawAsset{
			ownedAsset("1", contractA, walletW1),
			ownedAsset("2", contractA, walletW1),
			ownedAsset("3", contractA, walletW1),
		},
		nil, nil,
		[]string{walletW1},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token 2 failed")
}

func TestReconcile_NilCollectibleIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	materializer := mocks.NewMockMaterializer(ctrl)
	materializer.
		EXPECT().
		TransferEventToCollectible(gomock.Any(), gomock.Any(), true).
		Return(nil, nil)

	r := newReconciler(materializer)

	_, err := r.Reconcile(context.Background(),
		nil, nil,
		[]domain.RawEvent{transferEvent("1", contractA, thirdPart, walletW1, walletW1, "2021-01-01")},
		[]string{walletW1},
	)

	assert.ErrorIs(t, err, domain.ErrMaterialization)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	r := newReconciler(&stubMaterializer{})

	state, err := r.Reconcile(context.Background(), nil, nil, nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, state)
	assert.Empty(t, state)
}
