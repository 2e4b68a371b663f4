package constraints

// URIHost extracts the host part of a URI.
//
// RFC 3986: the authority part of a URI starts with "//" and is
// terminated by the next '/', '?', '#' or the end of the URI. The
// authority itself contains [userinfo '@'] host [':' port], so the
// host starts at the beginning of the authority or after the '@', and
// ends at the end of the URI or at ':', '/', '?' or '#'.
//
// The extracted host must independently pass ValidHost. On any failure
// URIHost returns ("", false).
func URIHost(uri []byte) (string, bool) {
	// There must be at least a "//" and something else.
	if len(uri) < 3 {
		return "", false
	}

	authority := -1
	for i := 0; i < len(uri)-1; i++ {
		if uri[i] >= 0x80 {
			return "", false
		}
		if uri[i] == '/' && uri[i+1] == '/' {
			authority = i + 2
			break
		}
	}
	if authority < 0 {
		return "", false
	}

	hostStart := authority
	hostLen := 0
	seenUserinfo := false
	for i := authority; i < len(uri); i++ {
		c := uri[i]
		if c >= 0x80 {
			return "", false
		}
		// It has a userinfo part.
		if c == '@' {
			hostLen = 0
			// It can only have one.
			if seenUserinfo {
				break
			}
			// Start after the userinfo part.
			seenUserinfo = true
			hostStart = i + 1
			continue
		}
		// Did we find the end?
		if c == ':' || c == '/' || c == '?' || c == '#' {
			break
		}
		hostLen++
	}
	if hostLen == 0 {
		return "", false
	}
	host := uri[hostStart : hostStart+hostLen]
	if !ValidHost(host) {
		return "", false
	}
	return string(host), true
}
