// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPayload_HappyPath(t *testing.T) {
	html := `<html><body><script>self.__next_f.push([1,"23:[{\"ticker\":\"ACME\",\"issuerId\":1}]"])</script></body></html>`

	var listings []IssuerListing
	err := extractPayload(html, 0, &listings)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, "ACME", listings[0].Ticker)
	require.Equal(t, int64(1), listings[0].IssuerID)
}

func TestExtractPayload_MissingNeedle(t *testing.T) {
	var listings []IssuerListing
	err := extractPayload(`<html><body>no payload here</body></html>`, 0, &listings)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, KindMissingPayload, se.Kind)
}

func TestExtractPayload_MalformedJSON(t *testing.T) {
	html := `self.__next_f.push([1,"5:not json"])`
	var listings []IssuerListing
	err := extractPayload(html, 0, &listings)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, KindDecodeFailed, se.Kind)
}

func TestIsPermanent_404(t *testing.T) {
	err := &Error{Kind: KindHTTP, StatusCode: 404}
	require.True(t, IsPermanent(err))

	err2 := &Error{Kind: KindHTTP, StatusCode: 500}
	require.False(t, IsPermanent(err2))
}

func TestIsTransient_RateLimited(t *testing.T) {
	require.True(t, IsTransient(&Error{Kind: KindRateLimited}))
	require.False(t, IsTransient(&Error{Kind: KindDecodeFailed}))
}
