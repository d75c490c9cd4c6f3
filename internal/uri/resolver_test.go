package uri_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-collectibles/internal/logger"
	"github.com/feral-file/ff-collectibles/internal/mocks"
	"github.com/feral-file/ff-collectibles/internal/uri"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		setupMocks  func(*mocks.MockHTTPClient)
		config      uri.Config
		expected    string
		expectedErr string // Error message to assert, empty means no error expected
	}{
		{
			name: "regular HTTPS URL",
			uri:  "https://example.com/path/to/image.png",
			config: uri.Config{
				IPFSGateways:    []string{"https://ipfs.io"},
				ArweaveGateways: []string{"https://arweave.net"},
			},
			expected: "https://example.com/path/to/image.png",
		},
		{
			name:     "data URI",
			uri:      "data:image/svg+xml;base64,PHN2Zy8+",
			expected: "data:image/svg+xml;base64,PHN2Zy8+",
		},
		{
			name: "IPFS URI",
			uri:  "ipfs://" + testCID,
			config: uri.Config{
				IPFSGateways: []string{"https://ipfs.io", "https://gateway.pinata.cloud/"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://ipfs.io/ipfs/"+testCID).
					Return(response(http.StatusNotFound), nil).
					AnyTimes()
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://gateway.pinata.cloud/ipfs/"+testCID).
					Return(response(http.StatusOK), nil)
			},
			expected: "https://gateway.pinata.cloud/ipfs/" + testCID,
		},
		{
			name: "IPFS URI with ipfs path prefix",
			uri:  "ipfs://ipfs/" + testCID + "/1.png",
			config: uri.Config{
				IPFSGateways: []string{"https://ipfs.io"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://ipfs.io/ipfs/"+testCID+"/1.png").
					Return(response(http.StatusOK), nil)
			},
			expected: "https://ipfs.io/ipfs/" + testCID + "/1.png",
		},
		{
			name: "IPFS gateway URL re-resolved",
			uri:  "https://slow.example.com/ipfs/" + testCID,
			config: uri.Config{
				IPFSGateways: []string{"https://ipfs.io"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://ipfs.io/ipfs/"+testCID).
					Return(response(http.StatusOK), nil)
			},
			expected: "https://ipfs.io/ipfs/" + testCID,
		},
		{
			name: "IPFS gateway URL kept when no gateway answers",
			uri:  "https://slow.example.com/ipfs/" + testCID,
			config: uri.Config{
				IPFSGateways: []string{"https://ipfs.io"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://ipfs.io/ipfs/"+testCID).
					Return(nil, assert.AnError)
			},
			expected: "https://slow.example.com/ipfs/" + testCID,
		},
		{
			name:     "IPFS gateway URL without configured gateways",
			uri:      "https://slow.example.com/ipfs/" + testCID,
			expected: "https://slow.example.com/ipfs/" + testCID,
		},
		{
			name: "Arweave URI",
			uri:  "ar://abc123",
			config: uri.Config{
				ArweaveGateways: []string{"https://arweave.net", "https://ar-io.net"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://arweave.net/abc123").
					Return(response(http.StatusOK), nil)
				// The resolver may return before the second probe is issued
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), "https://ar-io.net/abc123").
					Return(response(http.StatusNotFound), nil).
					AnyTimes()
			},
			expected: "https://arweave.net/abc123",
		},
		{
			name:        "IPFS URI - no gateways configured",
			uri:         "ipfs://" + testCID,
			expectedErr: "no IPFS gateways configured",
		},
		{
			name: "IPFS URI - no working gateway",
			uri:  "ipfs://" + testCID,
			config: uri.Config{
				IPFSGateways: []string{"https://ipfs.io", "https://gateway.pinata.cloud"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), gomock.Any()).
					Return(response(http.StatusNotFound), nil).
					Times(2)
			},
			expectedErr: "no working IPFS gateway found for CID " + testCID,
		},
		{
			name: "Arweave URI - network error",
			uri:  "ar://abc123",
			config: uri.Config{
				ArweaveGateways: []string{"https://arweave.net"},
			},
			setupMocks: func(mockHTTP *mocks.MockHTTPClient) {
				mockHTTP.
					EXPECT().
					Head(gomock.Any(), gomock.Any()).
					Return(nil, assert.AnError)
			},
			expectedErr: "no working Arweave gateway found for TX abc123",
		},
		{
			name:        "Arweave URI - no gateways configured",
			uri:         "ar://abc123",
			expectedErr: "no Arweave gateways configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockHTTP := mocks.NewMockHTTPClient(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(mockHTTP)
			}

			resolver := uri.NewResolver(mockHTTP, tt.config)
			result, err := resolver.Resolve(context.Background(), tt.uri)

			if tt.expectedErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Empty(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
