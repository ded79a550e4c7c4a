// Package protocol provides the TLS wire format
package protocol

// Version enums.
var (
	VersionSSL3_0 = Version{Major: 0x03, Minor: 0x00} //nolint:gochecknoglobals
	Version1_0    = Version{Major: 0x03, Minor: 0x01} //nolint:gochecknoglobals
	Version1_1    = Version{Major: 0x03, Minor: 0x02} //nolint:gochecknoglobals
	Version1_2    = Version{Major: 0x03, Minor: 0x03} //nolint:gochecknoglobals
)

// Version is the major/minor value in the RecordLayer
// and ClientHello/ServerHello
//
// https://tools.ietf.org/html/rfc5246#section-6.2.1
type Version struct {
	Major, Minor uint8
}

// Equal determines if two protocol versions are equal.
func (v Version) Equal(x Version) bool {
	return v.Major == x.Major && v.Minor == x.Minor
}

// IsSupported returns true if the version can be negotiated.
// TLS 1.0, 1.1 and 1.2 are supported, SSLv3 and below are not.
func IsSupported(v Version) bool {
	return v.Equal(Version1_0) || v.Equal(Version1_1) || v.Equal(Version1_2)
}
