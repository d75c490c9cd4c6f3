package collectibles_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collectibles/internal/collectibles"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/mocks"
)

func setupService(t *testing.T) (*mocks.MockSource, collectibles.Service) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)

	source := mocks.NewMockSource(ctrl)
	source.EXPECT().Name().Return("mock").AnyTimes()

	svc := collectibles.NewService(source, newReconciler(&stubMaterializer{}), pool, collectibles.ServiceConfig{Limit: 50})
	return source, svc
}

func TestService_GetAllCollectibles(t *testing.T) {
	source, svc := setupService(t)

	source.
		EXPECT().
		FetchOwnedAssets(gomock.Any(), walletW1, 50).
		Return([]domain.RawAsset{validAsset("1", contractA)}, nil)
	source.
		EXPECT().
		FetchOwnedAssets(gomock.Any(), walletW2, 50).
		Return([]domain.RawAsset{validAsset("2", contractA)}, nil)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), walletW1, domain.EventKindCreation, 50).
		Return([]domain.RawEvent{{Kind: domain.EventKindCreation, Asset: validAsset("3", contractB), Timestamp: date("2020-01-01")}}, nil)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), walletW2, domain.EventKindCreation, 50).
		Return(nil, nil)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), walletW1, domain.EventKindTransfer, 50).
		Return([]domain.RawEvent{
			{Kind: domain.EventKindTransfer, Asset: validAsset("1", contractA), FromAddress: domain.ETHEREUM_ZERO_ADDRESS, ToAddress: walletW1, Timestamp: date("2021-01-01")},
		}, nil)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), walletW2, domain.EventKindTransfer, 50).
		Return(nil, nil)

	state, err := svc.GetAllCollectibles(context.Background(), []string{walletW1, walletW2})

	require.NoError(t, err)
	assert.Equal(t, []domain.Identity{domain.KeyOf("1", contractA), domain.KeyOf("3", contractB)}, identities(state[walletW1]))
	assert.Equal(t, []domain.Identity{domain.KeyOf("2", contractA)}, identities(state[walletW2]))
	require.NotNil(t, state[walletW1][0].DateLastTransferred)
	assert.Equal(t, date("2021-01-01"), *state[walletW1][0].DateLastTransferred)
}

func TestService_GetAllCollectibles_ToleratesWalletFailures(t *testing.T) {
	source, svc := setupService(t)

	source.
		EXPECT().
		FetchOwnedAssets(gomock.Any(), walletW1, 50).
		Return(nil, errors.New("rate limited"))
	source.
		EXPECT().
		FetchOwnedAssets(gomock.Any(), walletW2, 50).
		Return([]domain.RawAsset{validAsset("2", contractA)}, nil)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), gomock.Any(), domain.EventKindCreation, 50).
		Return(nil, errors.New("server error")).
		Times(2)
	source.
		EXPECT().
		FetchEvents(gomock.Any(), gomock.Any(), domain.EventKindTransfer, 50).
		Return(nil, nil).
		Times(2)

	state, err := svc.GetAllCollectibles(context.Background(), []string{walletW1, walletW2})

	require.NoError(t, err)
	assert.Empty(t, state[walletW1])
	assert.Equal(t, []domain.Identity{domain.KeyOf("2", contractA)}, identities(state[walletW2]))
}

func TestService_GetAllCollectibles_NoWallets(t *testing.T) {
	_, svc := setupService(t)

	state, err := svc.GetAllCollectibles(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestService_GetAllCollectibles_MaterializerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pool := pond.NewPool(2)
	defer pool.StopAndWait()

	source := mocks.NewMockSource(ctrl)
	source.EXPECT().Name().Return("mock").AnyTimes()
	source.EXPECT().FetchOwnedAssets(gomock.Any(), walletW1, 10).Return([]domain.RawAsset{validAsset("1", contractA)}, nil)
	source.EXPECT().FetchEvents(gomock.Any(), walletW1, gomock.Any(), 10).Return(nil, nil).Times(2)

	materializer := mocks.NewMockMaterializer(ctrl)
	materializer.EXPECT().AssetToCollectible(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	svc := collectibles.NewService(source, newReconciler(materializer), pool, collectibles.ServiceConfig{Limit: 10})

	state, err := svc.GetAllCollectibles(context.Background(), []string{walletW1})

	assert.Nil(t, state)
	assert.ErrorIs(t, err, domain.ErrMaterialization)
}
