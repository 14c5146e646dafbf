package storage

import (
	"strings"
	"testing"
)

func TestNamespacePrefix(t *testing.T) {
	cases := []struct {
		ns   Namespace
		want string
	}{
		{nil, "global:"},
		{ClientNamespace{ClientID: "c"}, "client:1:c:"},
		{SessionNamespace{ClientID: "c", SessionID: "s1"}, "client:1:c:session:2:s1:"},
		{ClientNamespace{ClientID: "c:session:s"}, "client:11:c:session:s:"},
	}
	for _, tc := range cases {
		if got := NamespacePrefix(tc.ns); got != tc.want {
			t.Fatalf("NamespacePrefix(%#v) = %q, want %q", tc.ns, got, tc.want)
		}
	}
}

func TestNamespacePrefixDoesNotAlias(t *testing.T) {
	a := NamespacePrefix(SessionNamespace{ClientID: "c:session:s", SessionID: "x"})
	b := NamespacePrefix(SessionNamespace{ClientID: "c", SessionID: "s:session:x"})
	if a == b {
		t.Fatalf("distinct sessions share prefix %q", a)
	}
	client := NamespacePrefix(ClientNamespace{ClientID: "c"})
	for _, other := range []Namespace{
		ClientNamespace{ClientID: "c:x"},
		SessionNamespace{ClientID: "c:x", SessionID: "s"},
		SessionNamespace{ClientID: "c:session:s", SessionID: "x"},
	} {
		if p := NamespacePrefix(other); strings.HasPrefix(p, client) {
			t.Fatalf("client c prefix %q covers %#v (%q)", client, other, p)
		}
	}
	if !strings.HasPrefix(NamespacePrefix(SessionNamespace{ClientID: "c", SessionID: "s"}), client) {
		t.Fatal("client prefix must cover its own sessions")
	}
}

func TestKeyDoesNotCollideWithSessions(t *testing.T) {
	clientKey := Key(ClientNamespace{ClientID: "c"}, "session:1:s:key:k")
	sessionKey := Key(SessionNamespace{ClientID: "c", SessionID: "s"}, "k")
	if clientKey == sessionKey {
		t.Fatalf("client key and session key collide: %q", clientKey)
	}
}
