// Copyright 2026 CouleeApps.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package outcome

import (
	"errors"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("outcome envelopes", func() {

	It("carries a success value", func() {
		payload, err := Encode(map[string]int{"answer": 42}, nil)
		Expect(err).NotTo(HaveOccurred())
		env, err := Decode(payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.OK).To(BeTrue())
		var value map[string]int
		Expect(env.Unmarshal(&value)).To(Succeed())
		Expect(value).To(HaveKeyWithValue("answer", 42))
	})

	It("lets an error win over any value", func() {
		payload, err := Encode("shadowed", errors.New("boom"))
		Expect(err).NotTo(HaveOccurred())
		env, err := Decode(payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.OK).To(BeFalse())
		Expect(env.Error).To(Equal("boom"))
		Expect(env.Value).To(BeEmpty())
	})

	It("refuses to encode what JSON cannot express", func() {
		_, err := Encode(make(chan int), nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects byte salad", func() {
		_, err := Decode([]byte("not an envelope"))
		Expect(err).To(HaveOccurred())
		_, err = Decode(nil)
		Expect(err).To(HaveOccurred())
	})

	It("skips the value when the caller passes nil", func() {
		payload, _ := Encode(42, nil)
		env, err := Decode(payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Unmarshal(nil)).To(Succeed())
	})

	It("flags a success envelope without any value", func() {
		env := &Envelope{OK: true}
		var ignored int
		Expect(env.Unmarshal(&ignored)).NotTo(Succeed())
	})

	It("decodes from a stream that stays open after the envelope", func() {
		rd, wr := io.Pipe()
		go func() {
			payload, _ := Encode("prompt", nil)
			_, _ = wr.Write(payload)
			// Keep the stream open; DecodeFrom must not wait for EOF.
		}()
		type result struct {
			env *Envelope
			err error
		}
		decoded := make(chan result, 1)
		go func() {
			env, err := DecodeFrom(rd)
			decoded <- result{env, err}
		}()
		var res result
		Eventually(decoded, time.Second).Should(Receive(&res))
		Expect(res.err).NotTo(HaveOccurred())
		var s string
		Expect(res.env.Unmarshal(&s)).To(Succeed())
		Expect(s).To(Equal("prompt"))
	})

})
