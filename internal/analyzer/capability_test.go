package analyzer

import (
	"reflect"
	"testing"
)

const shopSample = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Lamp","offers":{"@type":"Offer","price":"49.99"}}</script>
<script src="https://js.stripe.com/v3/"></script>
<script src="https://api.checkoutservice.example/v1/client.js"></script>
</head><body>
<div class="product-card">Desk lamp <span>$49.99</span> <button>Add to cart</button></div>
<a href="/cart">Cart</a>
<a href="/checkout">Proceed to checkout</a>
<p>We accept Visa, Mastercard and PayPal.</p>
<form action="/login"><input type="password" name="pw"></form>
<form role="search"><input type="search" name="q"></form>
<footer>Subscribe to our newsletter <input type="email"></footer>
</body></html>`

func TestExtractCapabilities_Storefront(t *testing.T) {
	caps := ExtractCapabilities(mustPage(t, shopSample))

	if !caps.IsEcommerce {
		t.Error("expected ecommerce")
	}
	if !caps.HasProductListings || !caps.HasCart || !caps.HasCheckout {
		t.Errorf("commerce flags = listings:%v cart:%v checkout:%v, want all true",
			caps.HasProductListings, caps.HasCart, caps.HasCheckout)
	}
	if !caps.HasLoginForm || !caps.HasSearch || !caps.HasNewsletterSignup {
		t.Errorf("feature flags = login:%v search:%v newsletter:%v, want all true",
			caps.HasLoginForm, caps.HasSearch, caps.HasNewsletterSignup)
	}
	if caps.AllowsFileUploads {
		t.Error("no file input on page, uploads should be false")
	}
}

func TestExtractCapabilities_PaymentsAndCurrencies(t *testing.T) {
	caps := ExtractCapabilities(mustPage(t, shopSample))

	want := map[string]bool{"visa": true, "mastercard": true, "paypal": true, "stripe": true}
	for _, method := range caps.PaymentMethods {
		delete(want, method)
	}
	if len(want) != 0 {
		t.Errorf("payment methods missing %v, got %v", want, caps.PaymentMethods)
	}

	if !reflect.DeepEqual(caps.Currencies, []string{"USD"}) {
		t.Errorf("currencies = %v, want [USD]", caps.Currencies)
	}
}

func TestExtractCapabilities_StructuredData(t *testing.T) {
	caps := ExtractCapabilities(mustPage(t, shopSample))

	if !caps.HasStructuredData {
		t.Fatal("expected structured data")
	}
	got := map[string]bool{}
	for _, st := range caps.StructuredDataTypes {
		got[st] = true
	}
	if !got["Product"] || !got["Offer"] {
		t.Errorf("structured data types = %v, want Product and Offer", caps.StructuredDataTypes)
	}
}

func TestExtractCapabilities_ExternalHosts(t *testing.T) {
	caps := ExtractCapabilities(mustPage(t, shopSample))

	foundStripe := false
	for _, host := range caps.ThirdPartyHosts {
		if host == "js.stripe.com" {
			foundStripe = true
		}
		if host == "example.com" {
			t.Error("page's own host listed as third party")
		}
	}
	if !foundStripe {
		t.Errorf("third-party hosts = %v, want js.stripe.com included", caps.ThirdPartyHosts)
	}

	if len(caps.ExternalAPIHosts) != 1 || caps.ExternalAPIHosts[0] != "api.checkoutservice.example" {
		t.Errorf("api hosts = %v, want [api.checkoutservice.example]", caps.ExternalAPIHosts)
	}
}

func TestExtractCapabilities_PlainPage(t *testing.T) {
	caps := ExtractCapabilities(mustPage(t, `<html><body><article>Just words.</article></body></html>`))

	if caps.IsEcommerce || caps.HasCart || caps.HasCheckout {
		t.Errorf("plain page flagged as commerce: %+v", caps)
	}
	if caps.HasStructuredData || caps.HasLoginForm || caps.HasSearch {
		t.Errorf("plain page has unexpected capabilities: %+v", caps)
	}
}

func TestExtractCapabilities_MicrodataItemtype(t *testing.T) {
	html := `<html><body><div itemscope itemtype="https://schema.org/LocalBusiness"><span>Shop</span></div></body></html>`
	caps := ExtractCapabilities(mustPage(t, html))

	if !caps.HasStructuredData {
		t.Fatal("expected structured data from microdata")
	}
	if !reflect.DeepEqual(caps.StructuredDataTypes, []string{"LocalBusiness"}) {
		t.Errorf("structured data types = %v, want [LocalBusiness]", caps.StructuredDataTypes)
	}
}
