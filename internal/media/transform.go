package media

import "strings"

// Delivery transformation directives inserted into asset URLs. The media
// service applies them on the fly; stored URLs stay untransformed.
const (
	ThumbTransform  = "w_300,h_300,c_auto,f_auto,q_auto"
	DetailTransform = "w_900,h_600,c_fit,f_auto,q_auto"
)

const uploadSegment = "/upload/"

// TransformURL inserts a transformation directive after the upload path
// segment. URLs without the segment are returned unchanged.
func TransformURL(rawurl, directive string) string {
	if rawurl == "" || directive == "" {
		return rawurl
	}
	return strings.Replace(rawurl, uploadSegment, uploadSegment+directive+"/", 1)
}
