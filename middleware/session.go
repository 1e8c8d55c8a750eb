package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	cartSessionKey    = "cart_session"
)

// CartSessionMiddleware resolves which cart the request works on. Signed-in
// shoppers always get their account cart; guests keep the id they were
// issued, or get a fresh one echoed back in the response header.
func CartSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := CurrentIdentity(c); id != nil {
			c.Set(cartSessionKey, "user:"+strconv.Itoa(id.UserID))
			c.Next()
			return
		}

		guest, err := uuid.Parse(c.GetHeader(CartSessionHeader))
		if err != nil {
			guest = uuid.New()
		}
		c.Header(CartSessionHeader, guest.String())
		c.Set(cartSessionKey, "guest:"+guest.String())
		c.Next()
	}
}

func CartSessionID(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
